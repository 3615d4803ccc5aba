// Package system wires every component onto one state runner and seeds a
// fresh deployment.
package system

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/access"
	"zns/internal/domaintoken"
	"zns/internal/ledger"
	"zns/internal/platform/config"
	"zns/internal/pricing"
	"zns/internal/registrar"
	regmetrics "zns/internal/registrar/metrics"
	"zns/internal/registry"
	"zns/internal/resolver"
	"zns/internal/state"
	"zns/internal/treasury"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// Accounts the components act as.
var (
	RegistrarAddress       = domain.SystemAddress("registrar")
	TreasuryAddress        = domain.SystemAddress("treasury")
	CurvePricerAddress     = domain.SystemAddress("curve-pricer")
	FixedPricerAddress     = domain.SystemAddress("fixed-pricer")
	AddressResolverAddress = domain.SystemAddress("address-resolver")
)

// AssetAddress is the ledger address of the payment asset called symbol.
func AssetAddress(symbol string) common.Address {
	return domain.SystemAddress("asset:" + symbol)
}

// System is a fully wired registry deployment.
type System struct {
	Runner    *state.Runner
	Access    *access.Controller
	Registry  *registry.Registry
	Ledger    *ledger.Ledger
	Token     *domaintoken.Token
	Resolver  *resolver.AddressResolver
	Curve     *pricing.CurvePricer
	Fixed     *pricing.FixedPricer
	Pricers   *pricing.Directory
	Treasury  *treasury.Treasury
	Registrar *registrar.Registrar

	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *regmetrics.Metrics
}

// WithLogger hands logger to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistrarMetrics sets the registrar metrics.
func WithRegistrarMetrics(m *regmetrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New wires the components on runner. The root pricing policy is the curve.
func New(runner *state.Runner, opts ...Option) *System {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	s := &System{Runner: runner, logger: o.logger}
	s.Access = access.New(runner, access.WithLogger(o.logger))
	s.Registry = registry.New(runner, s.Access, registry.WithLogger(o.logger))
	s.Ledger = ledger.New(runner, ledger.WithLogger(o.logger))
	s.Token = domaintoken.New(runner, s.Access, domaintoken.WithLogger(o.logger))
	s.Resolver = resolver.New(runner, s.Registry, AddressResolverAddress)
	s.Curve = pricing.NewCurvePricer(runner, s.Registry, CurvePricerAddress, pricing.WithLogger(o.logger))
	s.Fixed = pricing.NewFixedPricer(runner, s.Registry, FixedPricerAddress, pricing.WithLogger(o.logger))
	s.Pricers = pricing.NewDirectory(s.Curve, s.Fixed)
	s.Treasury = treasury.New(runner, s.Access, s.Registry, s.Ledger, s.Curve, TreasuryAddress, treasury.WithLogger(o.logger))
	s.Registrar = registrar.New(runner, registrar.Deps{
		Roles:      s.Access,
		Registry:   s.Registry,
		Treasury:   s.Treasury,
		Pricers:    s.Pricers,
		RootPricer: s.Curve,
		Token:      s.Token,
		Resolver:   s.Resolver,
	}, RegistrarAddress, registrar.WithLogger(o.logger), registrar.WithMetrics(o.metrics))
	return s
}

// Seed describes a fresh deployment.
type Seed struct {
	Governor      common.Address
	Admin         common.Address
	Vault         common.Address
	AssetSymbol   string
	AssetDecimals uint8
	RootCurve     pricing.CurveConfig
}

// SeedFromConfig parses the bootstrap section of the process config.
func SeedFromConfig(cfg config.BootstrapConfig) (Seed, error) {
	seed := Seed{AssetSymbol: cfg.AssetSymbol, AssetDecimals: cfg.AssetDecimal}
	for _, f := range []struct {
		name string
		raw  string
		dst  *common.Address
	}{
		{"bootstrap.governor", cfg.Governor, &seed.Governor},
		{"bootstrap.admin", cfg.Admin, &seed.Admin},
		{"bootstrap.vault", cfg.Vault, &seed.Vault},
	} {
		if !common.IsHexAddress(f.raw) {
			return Seed{}, dErrors.Newf(dErrors.CodeValidation, "%s: %q is not an address", f.name, f.raw)
		}
		*f.dst = common.HexToAddress(f.raw)
	}
	curve := cfg.RootCurve
	maxPrice, err := domain.Amount(curve.MaxPrice)
	if err != nil {
		return Seed{}, fmt.Errorf("bootstrap.root_curve.max_price: %w", err)
	}
	minPrice, err := domain.Amount(curve.MinPrice)
	if err != nil {
		return Seed{}, fmt.Errorf("bootstrap.root_curve.min_price: %w", err)
	}
	pm, err := domain.Amount(curve.PrecisionMultiplier)
	if err != nil {
		return Seed{}, fmt.Errorf("bootstrap.root_curve.precision_multiplier: %w", err)
	}
	seed.RootCurve = pricing.CurveConfig{
		MaxPrice:            maxPrice,
		MinPrice:            minPrice,
		MaxLength:           curve.MaxLength,
		BaseLength:          curve.BaseLength,
		PrecisionMultiplier: pm,
		FeePercentage:       curve.FeePercentage,
	}
	return seed, nil
}

// Bootstrap seeds roles, the root record, the address resolver type, the
// payment asset, the root curve and the root payment config in one unit of
// work. It does nothing once the root exists.
func (s *System) Bootstrap(ctx context.Context, seed Seed) error {
	for name, addr := range map[string]common.Address{"governor": seed.Governor, "admin": seed.Admin, "vault": seed.Vault} {
		if domain.IsZero(addr) {
			return dErrors.Newf(dErrors.CodeZeroAddress, "%s is the zero address", name)
		}
	}
	var seeded bool
	err := s.Runner.Run(ctx, "system.bootstrap", func(ctx context.Context) error {
		exists, err := s.Registry.Exists(ctx, domain.Root)
		if err != nil || exists {
			return err
		}
		admin := seed.Admin
		asset := AssetAddress(seed.AssetSymbol)
		steps := []func() error{
			func() error {
				return s.Access.Initialize(ctx, []common.Address{seed.Governor}, []common.Address{admin})
			},
			func() error { return s.Access.GrantRole(ctx, admin, access.RoleRegistrar, RegistrarAddress) },
			func() error { return s.Registry.Initialize(ctx, admin) },
			func() error {
				return s.Registry.AddResolverType(ctx, admin, registry.ResolverTypeAddress, s.Resolver.Address())
			},
			func() error {
				return s.Ledger.RegisterToken(ctx, asset, seed.AssetSymbol, seed.AssetDecimals, admin)
			},
			func() error { return s.Curve.SetPriceConfig(ctx, admin, domain.Root, seed.RootCurve) },
			func() error {
				return s.Treasury.SetPaymentConfig(ctx, admin, domain.Root, treasury.PaymentConfig{Token: asset, Beneficiary: seed.Vault})
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return err
	}
	if seeded && s.logger != nil {
		s.logger.InfoContext(ctx, "system bootstrapped",
			"governor", seed.Governor.Hex(),
			"admin", seed.Admin.Hex(),
			"asset", AssetAddress(seed.AssetSymbol).Hex(),
		)
	}
	return nil
}
