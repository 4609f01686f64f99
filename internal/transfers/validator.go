package transfers

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/record"
)

// coercedRow holds one row between coercion and finalization. The period
// keeps any fractional part the input had; truncation happens last so that
// duplicate detection sees the values as they arrived.
type coercedRow struct {
	country string
	period  decimal.Decimal
	amount  decimal.Decimal
	source  string
}

// rowKey identifies a coerced row for duplicate removal. Decimal fields use
// their canonical string form, so 100 and 100.0 collide.
type rowKey struct {
	country string
	period  string
	amount  string
	source  string
}

func (r coercedRow) key() rowKey {
	return rowKey{
		country: r.country,
		period:  r.period.String(),
		amount:  r.amount.String(),
		source:  r.source,
	}
}

// cleanTransfers applies the cleaning rules to an applicant's raw rows and
// returns the rows that survive. The order is fixed: rows missing a critical
// field go first, then coercion failures, then exact duplicates, then the
// business rules. A nil result means no valid rows; the reason is logged.
func (p *Processor) cleanTransfers(applicantID string, rows []record.Raw) []domain.Transfer {
	if len(rows) == 0 {
		return nil
	}
	log := p.log.With().Str("applicant_id", applicantID).Logger()

	critical := make([]record.Raw, 0, len(rows))
	for _, row := range rows {
		if hasValue(row, "country") && hasValue(row, "period") && hasValue(row, "amount") {
			critical = append(critical, row)
		}
	}
	if len(critical) == 0 {
		log.Warn().Int("rows", len(rows)).Msg("All rows removed due to missing critical data")
		return nil
	}

	coerced := make([]coercedRow, 0, len(critical))
	for _, row := range critical {
		c, ok := coerceRow(row)
		if !ok {
			continue
		}
		coerced = append(coerced, c)
	}

	seen := make(map[rowKey]struct{}, len(coerced))
	cleaned := make([]domain.Transfer, 0, len(coerced))
	for _, c := range coerced {
		k := c.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if c.period.Sign() <= 0 || c.amount.Sign() <= 0 {
			continue
		}
		cleaned = append(cleaned, domain.Transfer{
			Country: c.country,
			Period:  int(c.period.IntPart()),
			Amount:  c.amount,
			Source:  c.source,
		})
	}

	if len(cleaned) == 0 {
		log.Warn().Int("rows", len(critical)).Msg("All rows removed due to invalid data or business rules")
		return nil
	}
	if removed := len(rows) - len(cleaned); removed > 0 {
		log.Info().Int("removed", removed).Msg("Removed invalid rows")
	}
	return cleaned
}

// hasValue reports whether the row has a usable value for key. Absent keys,
// nulls and blank strings all count as missing.
func hasValue(row record.Raw, key string) bool {
	v, ok := record.Field(row, key)
	return ok && !record.Blank(v)
}

// coerceRow converts one raw row into typed fields, normalizing the strings
// and defaulting a missing source to "Unknown". Returns false when any field
// cannot be coerced; such rows are dropped, never fatal.
func coerceRow(row record.Raw) (coercedRow, bool) {
	countryVal, _ := record.Field(row, "country")
	country, err := record.Stringify(countryVal)
	if err != nil {
		return coercedRow{}, false
	}

	source := "Unknown"
	if v, ok := record.Field(row, "source"); ok && !record.Blank(v) {
		s, err := record.Stringify(v)
		if err != nil {
			return coercedRow{}, false
		}
		source = s
	}

	periodVal, _ := record.Field(row, "period")
	period, err := record.ToDecimal(periodVal)
	if err != nil {
		return coercedRow{}, false
	}

	amountVal, _ := record.Field(row, "amount")
	amount, err := record.ToDecimal(amountVal)
	if err != nil {
		return coercedRow{}, false
	}

	return coercedRow{
		country: record.Normalize(country),
		period:  period,
		amount:  amount,
		source:  record.Normalize(source),
	}, true
}
