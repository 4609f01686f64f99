package domain

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/applicant-screening/internal/record"
)

// DefaultCurrency is used when an applicant has no usable currency code.
const DefaultCurrency = "GEL"

// ApplicantPayments is the input envelope for one applicant's payments.
// An empty Currency means the caller did not provide one; normalization and
// defaulting happen in the calculator, once per applicant.
type ApplicantPayments struct {
	Currency string       `json:"currency,omitempty"`
	Payments []record.Raw `json:"payments"`
}

// CurrencyTotals accumulates payment share amounts keyed by normalized
// currency code. A key exists only if at least one payment contributed to it.
type CurrencyTotals map[string]decimal.Decimal

// Add accumulates amount under currency, creating the key on first use.
func (t CurrencyTotals) Add(currency string, amount decimal.Decimal) {
	t[currency] = t[currency].Add(amount)
}

// Merge folds other into t. Merging partial totals is commutative, so
// per-applicant results can be combined in any order.
func (t CurrencyTotals) Merge(other CurrencyTotals) {
	for currency, amount := range other {
		t.Add(currency, amount)
	}
}

// Equal reports whether both totals hold the same currencies with numerically
// equal amounts.
func (t CurrencyTotals) Equal(other CurrencyTotals) bool {
	if len(t) != len(other) {
		return false
	}
	for currency, amount := range t {
		o, ok := other[currency]
		if !ok || !amount.Equal(o) {
			return false
		}
	}
	return true
}
