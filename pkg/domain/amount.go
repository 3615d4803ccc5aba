package domain

import (
	"github.com/holiman/uint256"

	dErrors "zns/pkg/domain-errors"
)

// PercentageBasis is the denominator of every fee percentage (100.00%).
const PercentageBasis = 10_000

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Amount parses a decimal amount as stored in state records.
// The empty string reads as zero.
func Amount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid amount")
	}
	return v, nil
}

// FormatAmount renders an amount for state records and events. Nil reads as zero.
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// Add returns a+b, failing on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount overflow")
	}
	return out, nil
}

// Percent returns amount*pct/PercentageBasis with floor division, failing on overflow.
func Percent(amount *uint256.Int, pct uint64) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(pct))
	if overflow {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fee computation overflow")
	}
	return out.Div(out, uint256.NewInt(PercentageBasis)), nil
}
