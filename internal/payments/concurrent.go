package payments

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/applicant-screening/internal/domain"
)

// CalculatePaymentsConcurrent fans applicants out over a bounded worker set
// and merges the per-applicant partial totals. The merge is commutative, so
// the result matches the sequential form regardless of scheduling. workers
// bounds parallelism; zero or less runs unbounded. Applicants not started
// before ctx is cancelled contribute nothing.
func (c *Calculator) CalculatePaymentsConcurrent(ctx context.Context, applicants []domain.ApplicantPayments, workers int) domain.CurrencyTotals {
	totals := domain.CurrencyTotals{}
	if len(applicants) == 0 {
		c.log.Warn().Msg("No applicants to process")
		return totals
	}

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	partials := make([]domain.CurrencyTotals, len(applicants))
	for i, applicant := range applicants {
		i, applicant := i, applicant
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				c.log.Warn().Int("applicant", i+1).Err(err).Msg("Applicant skipped, context cancelled")
				return nil
			}
			partial := domain.CurrencyTotals{}
			c.accumulate(i+1, applicant, partial)
			partials[i] = partial
			return nil
		})
	}
	_ = g.Wait()

	for _, partial := range partials {
		totals.Merge(partial)
	}
	return totals
}
