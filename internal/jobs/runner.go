package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/payments"
	"github.com/dvloznov/applicant-screening/internal/transfers"
)

// Runner executes batch jobs against the two pipelines and writes the result
// back onto the job, where the queue persists it to the store.
type Runner struct {
	processor  *transfers.Processor
	calculator *payments.Calculator
	workers    int
	log        zerolog.Logger
}

// NewRunner creates a Runner. workers above one makes the pipelines fan out
// over that many applicants at a time; otherwise they run sequentially.
func NewRunner(log zerolog.Logger, workers int) *Runner {
	return &Runner{
		processor:  transfers.NewProcessor(log),
		calculator: payments.NewCalculator(log),
		workers:    workers,
		log:        log,
	}
}

// Handle processes one batch job. It satisfies JobHandler.
func (r *Runner) Handle(ctx context.Context, job Job) error {
	batch, ok := job.(*BatchJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %T", job)
	}

	r.log.Info().
		Str("job_id", batch.JobID).
		Str("type", string(batch.Type)).
		Msg("Processing batch job")

	switch batch.Type {
	case JobTypeGroupTransfers:
		if r.workers > 1 {
			batch.TransferResults = r.processor.ProcessApplicantsConcurrent(ctx, batch.TransferApplicants, r.workers)
		} else {
			batch.TransferResults = r.processor.ProcessApplicants(batch.TransferApplicants)
		}
	case JobTypeAggregatePayments:
		if r.workers > 1 {
			batch.PaymentTotals = r.calculator.CalculatePaymentsConcurrent(ctx, batch.PaymentApplicants, r.workers)
		} else {
			batch.PaymentTotals = r.calculator.CalculatePayments(batch.PaymentApplicants)
		}
	default:
		return fmt.Errorf("unknown job type: %s", batch.Type)
	}

	r.log.Info().
		Str("job_id", batch.JobID).
		Str("type", string(batch.Type)).
		Msg("Batch job completed")

	return nil
}
