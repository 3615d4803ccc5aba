package pricing

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// CurvePricer prices children on an inverse-length curve per parent domain.
type CurvePricer struct {
	runner *state.Runner
	auth   Authorizer
	self   common.Address
	logger *slog.Logger
}

// Option configures a pricer.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for configuration changes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewCurvePricer creates a curve policy identified by self.
func NewCurvePricer(runner *state.Runner, auth Authorizer, self common.Address, opts ...Option) *CurvePricer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &CurvePricer{runner: runner, auth: auth, self: self, logger: o.logger}
}

// Address identifies the policy.
func (p *CurvePricer) Address() common.Address {
	return p.self
}

func (p *CurvePricer) key(hash common.Hash) []byte {
	return configKey(state.PrefixCurveConfig, p.self, hash)
}

// Config returns the stored curve config of hash.
func (p *CurvePricer) Config(ctx context.Context, hash common.Hash) (CurveConfig, error) {
	raw, ok, err := loadEncoded(ctx, p.runner, p.key(hash))
	if err != nil {
		return CurveConfig{}, err
	}
	if !ok {
		return CurveConfig{}, notConfigured(hash)
	}
	return DecodeCurveConfig(raw)
}

// EncodedConfig returns the stored config bytes of hash.
func (p *CurvePricer) EncodedConfig(ctx context.Context, hash common.Hash) ([]byte, bool, error) {
	return loadEncoded(ctx, p.runner, p.key(hash))
}

// Price returns the price of label under parent, without the fee.
func (p *CurvePricer) Price(ctx context.Context, parent common.Hash, label string, skipValidation bool) (*uint256.Int, error) {
	if err := checkLabel(label, skipValidation); err != nil {
		return nil, err
	}
	cfg, err := p.Config(ctx, parent)
	if err != nil {
		return nil, err
	}
	return cfg.Price(LabelLength(label))
}

// PriceAndFee quotes label under parent.
func (p *CurvePricer) PriceAndFee(ctx context.Context, parent common.Hash, label string, skipValidation bool) (*uint256.Int, *uint256.Int, error) {
	if err := checkLabel(label, skipValidation); err != nil {
		return nil, nil, err
	}
	cfg, err := p.Config(ctx, parent)
	if err != nil {
		return nil, nil, err
	}
	price, err := cfg.Price(LabelLength(label))
	if err != nil {
		return nil, nil, err
	}
	fee, err := cfg.Fee(price)
	if err != nil {
		return nil, nil, err
	}
	return price, fee, nil
}

// FeeForPrice applies parent's fee percentage to price.
func (p *CurvePricer) FeeForPrice(ctx context.Context, parent common.Hash, price *uint256.Int) (*uint256.Int, error) {
	cfg, err := p.Config(ctx, parent)
	if err != nil {
		return nil, err
	}
	return cfg.Fee(price)
}

// ValidateConfig decodes and validates raw.
func (p *CurvePricer) ValidateConfig(raw []byte) error {
	cfg, err := DecodeCurveConfig(raw)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// ApplyConfig decodes raw and stores it as hash's config.
func (p *CurvePricer) ApplyConfig(ctx context.Context, caller common.Address, hash common.Hash, raw []byte) error {
	cfg, err := DecodeCurveConfig(raw)
	if err != nil {
		return err
	}
	return p.SetPriceConfig(ctx, caller, hash, cfg)
}

// SetPriceConfig replaces hash's whole config.
func (p *CurvePricer) SetPriceConfig(ctx context.Context, caller common.Address, hash common.Hash, cfg CurveConfig) error {
	return p.runner.Run(ctx, "pricing.curve.set_price_config", func(ctx context.Context) error {
		if err := p.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		cfg = cfg.normalized()
		if err := p.store(ctx, hash, cfg); err != nil {
			return err
		}
		if p.logger != nil {
			p.logger.InfoContext(ctx, "curve price config set",
				"domain", hash.Hex(),
				"max_price", cfg.MaxPrice.Dec(),
				"base_length", cfg.BaseLength,
				"max_length", cfg.MaxLength,
			)
		}
		return emit(ctx, EventPriceConfigSet, hash, CurveConfigSet{
			Pricer:              p.self,
			MaxPrice:            cfg.MaxPrice.Dec(),
			MinPrice:            cfg.MinPrice.Dec(),
			MaxLength:           cfg.MaxLength,
			BaseLength:          cfg.BaseLength,
			PrecisionMultiplier: cfg.PrecisionMultiplier.Dec(),
			FeePercentage:       cfg.FeePercentage,
		})
	})
}

// SetMaxPrice sets the price of labels up to the base length.
func (p *CurvePricer) SetMaxPrice(ctx context.Context, caller common.Address, hash common.Hash, v *uint256.Int) error {
	return p.update(ctx, "pricing.curve.set_max_price", caller, hash, EventMaxPriceSet, domain.FormatAmount(v),
		func(c *CurveConfig) { c.MaxPrice = orZero(v).Clone() })
}

// SetMinPrice sets the price of labels longer than the max length.
func (p *CurvePricer) SetMinPrice(ctx context.Context, caller common.Address, hash common.Hash, v *uint256.Int) error {
	return p.update(ctx, "pricing.curve.set_min_price", caller, hash, EventMinPriceSet, domain.FormatAmount(v),
		func(c *CurveConfig) { c.MinPrice = orZero(v).Clone() })
}

// SetBaseLength sets the longest label still priced at MaxPrice.
func (p *CurvePricer) SetBaseLength(ctx context.Context, caller common.Address, hash common.Hash, v uint64) error {
	return p.update(ctx, "pricing.curve.set_base_length", caller, hash, EventBaseLengthSet, uint256.NewInt(v).Dec(),
		func(c *CurveConfig) { c.BaseLength = v })
}

// SetMaxLength sets the longest label priced on the curve.
func (p *CurvePricer) SetMaxLength(ctx context.Context, caller common.Address, hash common.Hash, v uint64) error {
	return p.update(ctx, "pricing.curve.set_max_length", caller, hash, EventMaxLengthSet, uint256.NewInt(v).Dec(),
		func(c *CurveConfig) { c.MaxLength = v })
}

// SetPrecisionMultiplier sets the rounding granularity of curve prices.
func (p *CurvePricer) SetPrecisionMultiplier(ctx context.Context, caller common.Address, hash common.Hash, v *uint256.Int) error {
	return p.update(ctx, "pricing.curve.set_precision_multiplier", caller, hash, EventPrecisionMultiplierSet, domain.FormatAmount(v),
		func(c *CurveConfig) { c.PrecisionMultiplier = orZero(v).Clone() })
}

// SetFeePercentage sets the parent's cut, in basis points.
func (p *CurvePricer) SetFeePercentage(ctx context.Context, caller common.Address, hash common.Hash, v uint64) error {
	return p.update(ctx, "pricing.curve.set_fee_percentage", caller, hash, EventFeePercentageSet, uint256.NewInt(v).Dec(),
		func(c *CurveConfig) { c.FeePercentage = v })
}

func (p *CurvePricer) update(ctx context.Context, op string, caller common.Address, hash common.Hash,
	typ events.Type, value string, mutate func(*CurveConfig)) error {
	return p.runner.Run(ctx, op, func(ctx context.Context) error {
		if err := p.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		cfg, err := p.Config(ctx, hash)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeDistributionLockedOrNotExist) {
			return err
		}
		cfg = cfg.normalized()
		mutate(&cfg)
		if err := p.store(ctx, hash, cfg); err != nil {
			return err
		}
		return emit(ctx, typ, hash, ValueSet{Pricer: p.self, Value: value})
	})
}

func (p *CurvePricer) store(ctx context.Context, hash common.Hash, cfg CurveConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := state.Put(ctx, p.key(hash), cfg.Encode()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store price config")
	}
	return nil
}
