package payments

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/applicant-screening/internal/record"
)

// Skip reasons returned by Share. Each one rejects a single payment; callers
// log the reason and move on. ErrInactive is an ordinary outcome rather than
// bad data, so callers keep it out of the logs.
var (
	ErrInactive              = errors.New("payment not active")
	ErrInvalidIncomeShare    = errors.New("invalid incomeshare")
	ErrIncomeShareOutOfRange = errors.New("incomeshare outside [0, 1]")
	ErrMissingBase           = errors.New("empty base")
	ErrInvalidBase           = errors.New("invalid base")
	ErrNonPositiveBase       = errors.New("base not positive")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrNegativeAmount        = errors.New("negative amount")
)

var one = decimal.NewFromInt(1)

// Share validates one payment and computes its weighted contribution,
// amount * (incomeshare / base). The checks run in a fixed order: active
// flag, income share, base, amount. A non-nil error names the first reason
// to skip the payment.
func Share(pay record.Raw) (decimal.Decimal, error) {
	if !isActive(pay) {
		return decimal.Zero, ErrInactive
	}

	// An explicit incomeshare of 0 is a real value and must not fall back
	// to the default, so the default applies only when the key is absent.
	share := one
	if v, ok := pay["incomeshare"]; ok {
		d, err := record.ToDecimal(v)
		if err != nil {
			return decimal.Zero, ErrInvalidIncomeShare
		}
		share = d
	}
	if share.IsNegative() || share.GreaterThan(one) {
		return decimal.Zero, ErrIncomeShareOutOfRange
	}

	baseVal, ok := record.Field(pay, "base")
	if !ok {
		return decimal.Zero, ErrMissingBase
	}
	base, err := record.ToDecimal(baseVal)
	if err != nil {
		return decimal.Zero, ErrInvalidBase
	}
	if base.Sign() <= 0 {
		return decimal.Zero, ErrNonPositiveBase
	}

	amount := decimal.Zero
	if v, ok := pay["amount"]; ok {
		d, err := record.ToDecimal(v)
		if err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		amount = d
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}

	return amount.Mul(share.Div(base)), nil
}

// isActive interprets the active flag. Absent keys and empty strings count
// as active; everything else follows its truthiness, so false, zero and null
// all mean inactive.
func isActive(pay record.Raw) bool {
	v, ok := pay["active"]
	if !ok {
		return true
	}
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return err != nil || !d.IsZero()
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}
