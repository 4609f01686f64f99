package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/applicant-screening/internal/record"
)

// Transfer is one cleaned money transfer row. Values carry the invariants the
// validator established; downstream code relies on them without re-checking.
type Transfer struct {
	Country string          // uppercase, trimmed, never empty
	Period  int             // strictly positive
	Amount  decimal.Decimal // strictly positive
	Source  string          // uppercase, trimmed, "UNKNOWN" when the input had none
}

// ApplicantTransfers is the input envelope for one applicant's transfers.
// An empty ApplicantID means the caller did not provide one. Rows stay raw
// until the validator has cleaned them.
type ApplicantTransfers struct {
	ApplicantID string       `json:"applicant_id,omitempty"`
	Transfers   []record.Raw `json:"transfers"`
}

// GroupedTransfer is the aggregate for one (country, period) pair: the summed
// amount and the unique source labels joined alphabetically with "/".
type GroupedTransfer struct {
	Country string          `json:"country"`
	Period  int             `json:"period"`
	Amount  decimal.Decimal `json:"amount"`
	Source  string          `json:"source"`
}

// GroupedResult is the grouped output for one applicant. GroupedTransfers is
// never nil; an applicant whose rows were all dropped gets an empty list.
type GroupedResult struct {
	ApplicantID      string            `json:"applicant_id"`
	GroupedTransfers []GroupedTransfer `json:"grouped_transfers"`
}

// PlaceholderApplicantID names applicants that arrived without an id.
// Positions are 1-based, matching the input order.
func PlaceholderApplicantID(position int) string {
	return fmt.Sprintf("Unknown_%d", position)
}
