package transfers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/applicant-screening/internal/domain"
)

// ProcessApplicantsConcurrent is ProcessApplicants with per-applicant fan-out.
// Applicants are independent, so results merge by index and the output matches
// the sequential form. workers bounds parallelism; zero or less runs
// unbounded. Applicants not started before ctx is cancelled get an empty
// grouped list, keeping one result per applicant either way.
func (p *Processor) ProcessApplicantsConcurrent(ctx context.Context, applicants []domain.ApplicantTransfers, workers int) []domain.GroupedResult {
	if len(applicants) == 0 {
		p.log.Warn().Msg("No applicants to process")
		return []domain.GroupedResult{}
	}

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	results := make([]domain.GroupedResult, len(applicants))
	for i, applicant := range applicants {
		i, applicant := i, applicant
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				id := resolveApplicantID(i+1, applicant.ApplicantID)
				p.log.Error().Str("applicant_id", id).Err(err).Msg("Applicant skipped, context cancelled")
				results[i] = domain.GroupedResult{
					ApplicantID:      id,
					GroupedTransfers: []domain.GroupedTransfer{},
				}
				return nil
			}
			results[i] = p.processOne(i+1, applicant)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
