package transfers

import (
	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/logger"
)

// Processor runs the transfer cleaning and grouping pipeline over batches of
// applicants. The logger is injected so callers control the sink.
type Processor struct {
	log zerolog.Logger
}

// NewProcessor creates a Processor logging through log.
func NewProcessor(log zerolog.Logger) *Processor {
	return &Processor{log: logger.WithComponent(log, "transfers")}
}

// ProcessApplicants cleans and groups every applicant's transfers in input
// order. The result always has one entry per applicant; a failure while
// processing one applicant leaves it with an empty grouped list and the batch
// moves on.
func (p *Processor) ProcessApplicants(applicants []domain.ApplicantTransfers) []domain.GroupedResult {
	if len(applicants) == 0 {
		p.log.Warn().Msg("No applicants to process")
		return []domain.GroupedResult{}
	}

	results := make([]domain.GroupedResult, len(applicants))
	for i, applicant := range applicants {
		results[i] = p.processOne(i+1, applicant)
	}
	return results
}

// processOne handles a single applicant, turning panics into an empty result
// so one bad applicant cannot take down the batch.
func (p *Processor) processOne(position int, applicant domain.ApplicantTransfers) (result domain.GroupedResult) {
	id := resolveApplicantID(position, applicant.ApplicantID)
	result = domain.GroupedResult{
		ApplicantID:      id,
		GroupedTransfers: []domain.GroupedTransfer{},
	}

	defer func() {
		if err := recover(); err != nil {
			p.log.Error().
				Str("applicant_id", id).
				Interface("error", err).
				Msg("Applicant processing failed")
			result.GroupedTransfers = []domain.GroupedTransfer{}
		}
	}()

	if len(applicant.Transfers) == 0 {
		p.log.Info().Str("applicant_id", id).Msg("Applicant has no transfers")
		return result
	}

	result.GroupedTransfers = GroupTransfers(p.cleanTransfers(id, applicant.Transfers))
	return result
}

// resolveApplicantID falls back to a positional placeholder when the input
// carried no id.
func resolveApplicantID(position int, id string) string {
	if id == "" {
		return domain.PlaceholderApplicantID(position)
	}
	return id
}
