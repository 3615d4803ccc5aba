package pricing

import (
	"github.com/holiman/uint256"

	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

const wordSize = 32

// MaxPrecisionMultiplier bounds the rounding granularity of curve prices.
var MaxPrecisionMultiplier = uint256.NewInt(1_000_000_000_000_000_000)

// CurveConfig parameterizes the asymptotic price curve of one domain's
// children. Prices are in the payment asset's base unit.
type CurveConfig struct {
	MaxPrice            *uint256.Int
	MinPrice            *uint256.Int
	MaxLength           uint64
	BaseLength          uint64
	PrecisionMultiplier *uint256.Int
	FeePercentage       uint64
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return domain.Zero()
	}
	return v
}

func (c CurveConfig) normalized() CurveConfig {
	c.MaxPrice = orZero(c.MaxPrice)
	c.MinPrice = orZero(c.MinPrice)
	c.PrecisionMultiplier = orZero(c.PrecisionMultiplier)
	return c
}

// Price returns the price of a label of length n.
//
// Labels up to BaseLength cost MaxPrice, labels longer than MaxLength cost
// MinPrice, and lengths in between follow BaseLength*MaxPrice/n truncated
// to a multiple of PrecisionMultiplier. A zero BaseLength prices every
// length at MaxPrice.
func (c CurveConfig) Price(n uint64) (*uint256.Int, error) {
	c = c.normalized()
	switch {
	case c.BaseLength == 0, n <= c.BaseLength:
		return c.MaxPrice.Clone(), nil
	case n > c.MaxLength:
		return c.MinPrice.Clone(), nil
	}
	if c.PrecisionMultiplier.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidPriceConfig, "precision multiplier is zero")
	}
	p, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(c.BaseLength), c.MaxPrice)
	if overflow {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "price computation overflow")
	}
	p.Div(p, uint256.NewInt(n))
	p.Div(p, c.PrecisionMultiplier)
	return p.Mul(p, c.PrecisionMultiplier), nil
}

// Fee returns price * FeePercentage / PercentageBasis.
func (c CurveConfig) Fee(price *uint256.Int) (*uint256.Int, error) {
	return domain.Percent(price, c.FeePercentage)
}

// Validate checks the bounds and that a label one past MaxLength never
// costs more than a label of exactly MaxLength.
func (c CurveConfig) Validate() error {
	c = c.normalized()
	if c.PrecisionMultiplier.IsZero() || c.PrecisionMultiplier.Gt(MaxPrecisionMultiplier) {
		return dErrors.Newf(dErrors.CodeInvalidPriceConfig,
			"precision multiplier %s must be between 1 and %s", c.PrecisionMultiplier.Dec(), MaxPrecisionMultiplier.Dec())
	}
	if c.FeePercentage > domain.PercentageBasis {
		return dErrors.Newf(dErrors.CodeInvalidPriceConfig,
			"fee percentage %d exceeds %d", c.FeePercentage, domain.PercentageBasis)
	}
	atMax, err := c.Price(c.MaxLength)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidPriceConfig, "price at max length")
	}
	if c.MaxLength == ^uint64(0) {
		return nil
	}
	pastMax, err := c.Price(c.MaxLength + 1)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidPriceConfig, "price past max length")
	}
	if pastMax.Gt(atMax) {
		return dErrors.Newf(dErrors.CodeInvalidPriceConfig,
			"price spikes at max length: %s after %s", pastMax.Dec(), atMax.Dec())
	}
	return nil
}

// Encode packs the config into six 32-byte big-endian words in field order.
func (c CurveConfig) Encode() []byte {
	c = c.normalized()
	return packWords(
		c.MaxPrice,
		c.MinPrice,
		uint256.NewInt(c.MaxLength),
		uint256.NewInt(c.BaseLength),
		c.PrecisionMultiplier,
		uint256.NewInt(c.FeePercentage),
	)
}

// DecodeCurveConfig reverses Encode.
func DecodeCurveConfig(raw []byte) (CurveConfig, error) {
	w, err := unpackWords(raw, 6)
	if err != nil {
		return CurveConfig{}, err
	}
	for _, i := range []int{2, 3, 5} {
		if !w[i].IsUint64() {
			return CurveConfig{}, dErrors.New(dErrors.CodeInvalidPriceConfig, "length or percentage out of range")
		}
	}
	return CurveConfig{
		MaxPrice:            w[0],
		MinPrice:            w[1],
		MaxLength:           w[2].Uint64(),
		BaseLength:          w[3].Uint64(),
		PrecisionMultiplier: w[4],
		FeePercentage:       w[5].Uint64(),
	}, nil
}

// FixedConfig is a flat price for every label.
type FixedConfig struct {
	Price         *uint256.Int
	FeePercentage uint64
}

// Fee returns price * FeePercentage / PercentageBasis.
func (c FixedConfig) Fee(price *uint256.Int) (*uint256.Int, error) {
	return domain.Percent(price, c.FeePercentage)
}

// Validate checks the fee percentage cap.
func (c FixedConfig) Validate() error {
	if c.FeePercentage > domain.PercentageBasis {
		return dErrors.Newf(dErrors.CodeInvalidPriceConfig,
			"fee percentage %d exceeds %d", c.FeePercentage, domain.PercentageBasis)
	}
	return nil
}

// Encode packs the config into two 32-byte words.
func (c FixedConfig) Encode() []byte {
	return packWords(orZero(c.Price), uint256.NewInt(c.FeePercentage))
}

// DecodeFixedConfig reverses Encode.
func DecodeFixedConfig(raw []byte) (FixedConfig, error) {
	w, err := unpackWords(raw, 2)
	if err != nil {
		return FixedConfig{}, err
	}
	if !w[1].IsUint64() {
		return FixedConfig{}, dErrors.New(dErrors.CodeInvalidPriceConfig, "fee percentage out of range")
	}
	return FixedConfig{Price: w[0], FeePercentage: w[1].Uint64()}, nil
}

func packWords(values ...*uint256.Int) []byte {
	out := make([]byte, 0, len(values)*wordSize)
	for _, v := range values {
		b := v.Bytes32()
		out = append(out, b[:]...)
	}
	return out
}

func unpackWords(raw []byte, n int) ([]*uint256.Int, error) {
	if len(raw) != n*wordSize {
		return nil, dErrors.Newf(dErrors.CodeInvalidPriceConfig,
			"price config must be %d bytes, got %d", n*wordSize, len(raw))
	}
	out := make([]*uint256.Int, n)
	for i := range out {
		out[i] = new(uint256.Int).SetBytes(raw[i*wordSize : (i+1)*wordSize])
	}
	return out, nil
}
