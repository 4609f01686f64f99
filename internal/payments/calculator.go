package payments

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/logger"
	"github.com/dvloznov/applicant-screening/internal/record"
)

// Calculator accumulates weighted payment shares into per-currency totals.
// The logger is injected so callers control the sink.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a Calculator logging through log.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{log: logger.WithComponent(log, "payments")}
}

// CalculatePayments folds every applicant's valid payments into a total per
// currency. Applicants and their payments are identified by 1-based position
// in the logs. The returned map is never nil; a currency key exists only if
// at least one payment contributed to it.
func (c *Calculator) CalculatePayments(applicants []domain.ApplicantPayments) domain.CurrencyTotals {
	totals := domain.CurrencyTotals{}
	if len(applicants) == 0 {
		c.log.Warn().Msg("No applicants to process")
		return totals
	}

	for i, applicant := range applicants {
		c.accumulate(i+1, applicant, totals)
	}
	return totals
}

// accumulate folds one applicant's payments into totals. The currency is
// resolved once per applicant, before any payment is looked at.
func (c *Calculator) accumulate(position int, applicant domain.ApplicantPayments, totals domain.CurrencyTotals) {
	currency := c.resolveCurrency(position, applicant.Currency)

	if len(applicant.Payments) == 0 {
		c.log.Warn().Int("applicant", position).Str("currency", currency).Msg("Applicant has no payments")
		return
	}

	for j, pay := range applicant.Payments {
		c.addShare(position, j+1, pay, currency, totals)
	}
}

// addShare computes one payment's share and adds it under currency. A skip
// reason or a panic affects only this payment.
func (c *Calculator) addShare(position, number int, pay record.Raw, currency string, totals domain.CurrencyTotals) {
	defer func() {
		if err := recover(); err != nil {
			c.log.Warn().
				Int("applicant", position).
				Int("payment", number).
				Interface("error", err).
				Msg("Payment skipped after panic")
		}
	}()

	share, err := Share(pay)
	if err != nil {
		if !errors.Is(err, ErrInactive) {
			c.log.Warn().
				Int("applicant", position).
				Int("payment", number).
				Err(err).
				Msg("Payment skipped")
		}
		return
	}
	totals.Add(currency, share)
}

// resolveCurrency normalizes an applicant's currency once, falling back to
// the default when nothing usable was provided. The fallback is only worth a
// warning when the input actually carried a value.
func (c *Calculator) resolveCurrency(position int, raw string) string {
	currency := record.Normalize(raw)
	if currency == "" {
		if raw != "" {
			c.log.Warn().
				Int("applicant", position).
				Str("default", domain.DefaultCurrency).
				Msg("Blank currency, using default")
		}
		currency = domain.DefaultCurrency
	}
	return currency
}
