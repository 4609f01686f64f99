package transfers

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/applicant-screening/internal/domain"
)

// groupKey identifies one (country, period) partition.
type groupKey struct {
	country string
	period  int
}

// GroupTransfers partitions cleaned rows by (country, period), summing the
// amounts and collecting the distinct source labels. Partitions come back
// sorted by country then period, with sources sorted alphabetically and
// joined by "/". Empty input yields an empty list, never nil.
func GroupTransfers(cleaned []domain.Transfer) []domain.GroupedTransfer {
	type accumulator struct {
		amount  decimal.Decimal
		sources map[string]struct{}
	}

	groups := make(map[groupKey]*accumulator, len(cleaned))
	for _, t := range cleaned {
		k := groupKey{country: t.Country, period: t.Period}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{sources: make(map[string]struct{})}
			groups[k] = acc
		}
		acc.amount = acc.amount.Add(t.Amount)
		acc.sources[t.Source] = struct{}{}
	}

	result := make([]domain.GroupedTransfer, 0, len(groups))
	for k, acc := range groups {
		sources := make([]string, 0, len(acc.sources))
		for s := range acc.sources {
			sources = append(sources, s)
		}
		sort.Strings(sources)

		result = append(result, domain.GroupedTransfer{
			Country: k.country,
			Period:  k.period,
			Amount:  acc.amount,
			Source:  strings.Join(sources, "/"),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Country != result[j].Country {
			return result[i].Country < result[j].Country
		}
		return result[i].Period < result[j].Period
	})
	return result
}
