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

// FixedPricer charges one flat price for every child of a domain.
type FixedPricer struct {
	runner *state.Runner
	auth   Authorizer
	self   common.Address
	logger *slog.Logger
}

// NewFixedPricer creates a flat-rate policy identified by self.
func NewFixedPricer(runner *state.Runner, auth Authorizer, self common.Address, opts ...Option) *FixedPricer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &FixedPricer{runner: runner, auth: auth, self: self, logger: o.logger}
}

func (p *FixedPricer) Address() common.Address {
	return p.self
}

func (p *FixedPricer) key(hash common.Hash) []byte {
	return configKey(state.PrefixFixedConfig, p.self, hash)
}

// Config returns the stored fixed config of hash.
func (p *FixedPricer) Config(ctx context.Context, hash common.Hash) (FixedConfig, error) {
	raw, ok, err := loadEncoded(ctx, p.runner, p.key(hash))
	if err != nil {
		return FixedConfig{}, err
	}
	if !ok {
		return FixedConfig{}, notConfigured(hash)
	}
	return DecodeFixedConfig(raw)
}

func (p *FixedPricer) EncodedConfig(ctx context.Context, hash common.Hash) ([]byte, bool, error) {
	return loadEncoded(ctx, p.runner, p.key(hash))
}

// Price returns the flat price under parent.
func (p *FixedPricer) Price(ctx context.Context, parent common.Hash, label string, skipValidation bool) (*uint256.Int, error) {
	price, _, err := p.PriceAndFee(ctx, parent, label, skipValidation)
	return price, err
}

func (p *FixedPricer) PriceAndFee(ctx context.Context, parent common.Hash, label string, skipValidation bool) (*uint256.Int, *uint256.Int, error) {
	if err := checkLabel(label, skipValidation); err != nil {
		return nil, nil, err
	}
	cfg, err := p.Config(ctx, parent)
	if err != nil {
		return nil, nil, err
	}
	price := orZero(cfg.Price).Clone()
	fee, err := cfg.Fee(price)
	if err != nil {
		return nil, nil, err
	}
	return price, fee, nil
}

func (p *FixedPricer) FeeForPrice(ctx context.Context, parent common.Hash, price *uint256.Int) (*uint256.Int, error) {
	cfg, err := p.Config(ctx, parent)
	if err != nil {
		return nil, err
	}
	return cfg.Fee(price)
}

func (p *FixedPricer) ValidateConfig(raw []byte) error {
	cfg, err := DecodeFixedConfig(raw)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func (p *FixedPricer) ApplyConfig(ctx context.Context, caller common.Address, hash common.Hash, raw []byte) error {
	cfg, err := DecodeFixedConfig(raw)
	if err != nil {
		return err
	}
	return p.SetPriceConfig(ctx, caller, hash, cfg)
}

// SetPriceConfig replaces hash's whole config.
func (p *FixedPricer) SetPriceConfig(ctx context.Context, caller common.Address, hash common.Hash, cfg FixedConfig) error {
	return p.runner.Run(ctx, "pricing.fixed.set_price_config", func(ctx context.Context) error {
		if err := p.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		cfg.Price = orZero(cfg.Price)
		if err := p.store(ctx, hash, cfg); err != nil {
			return err
		}
		if p.logger != nil {
			p.logger.InfoContext(ctx, "fixed price config set",
				"domain", hash.Hex(),
				"price", cfg.Price.Dec(),
				"fee_percentage", cfg.FeePercentage,
			)
		}
		return emit(ctx, EventPriceConfigSet, hash, FixedConfigSet{
			Pricer:        p.self,
			Price:         cfg.Price.Dec(),
			FeePercentage: cfg.FeePercentage,
		})
	})
}

// SetPrice sets the flat price.
func (p *FixedPricer) SetPrice(ctx context.Context, caller common.Address, hash common.Hash, v *uint256.Int) error {
	return p.update(ctx, "pricing.fixed.set_price", caller, hash, EventPriceSet, domain.FormatAmount(v),
		func(c *FixedConfig) { c.Price = orZero(v).Clone() })
}

// SetFeePercentage sets the parent's cut, in basis points.
func (p *FixedPricer) SetFeePercentage(ctx context.Context, caller common.Address, hash common.Hash, v uint64) error {
	return p.update(ctx, "pricing.fixed.set_fee_percentage", caller, hash, EventFeePercentageSet, uint256.NewInt(v).Dec(),
		func(c *FixedConfig) { c.FeePercentage = v })
}

func (p *FixedPricer) update(ctx context.Context, op string, caller common.Address, hash common.Hash,
	typ events.Type, value string, mutate func(*FixedConfig)) error {
	return p.runner.Run(ctx, op, func(ctx context.Context) error {
		if err := p.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		cfg, err := p.Config(ctx, hash)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeDistributionLockedOrNotExist) {
			return err
		}
		cfg.Price = orZero(cfg.Price)
		mutate(&cfg)
		if err := p.store(ctx, hash, cfg); err != nil {
			return err
		}
		return emit(ctx, typ, hash, ValueSet{Pricer: p.self, Value: value})
	})
}

func (p *FixedPricer) store(ctx context.Context, hash common.Hash, cfg FixedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := state.Put(ctx, p.key(hash), cfg.Encode()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store price config")
	}
	return nil
}
