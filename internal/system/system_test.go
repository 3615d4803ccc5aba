package system

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	"zns/internal/access"
	"zns/internal/events/publishers/memory"
	"zns/internal/platform/config"
	"zns/internal/pricing"
	"zns/internal/registrar"
	"zns/internal/registry"
	"zns/internal/state"
	"zns/internal/treasury"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

type SystemSuite struct {
	suite.Suite
	ctx      context.Context
	recorder *memory.Recorder
	sys      *System
	seed     Seed
}

func TestSystemSuite(t *testing.T) {
	suite.Run(t, new(SystemSuite))
}

func (s *SystemSuite) SetupTest() {
	s.ctx = context.Background()
	s.recorder = memory.NewRecorder(0)
	runner, err := state.NewRunner(state.NewMemoryStore(), state.WithPublisher(s.recorder))
	s.Require().NoError(err)
	s.sys = New(runner)
	s.seed = Seed{
		Governor:      common.HexToAddress("0x60f"),
		Admin:         common.HexToAddress("0xad"),
		Vault:         common.HexToAddress("0xfa017"),
		AssetSymbol:   "MEOW",
		AssetDecimals: 18,
		RootCurve: pricing.CurveConfig{
			MaxPrice:            uint256.NewInt(1000),
			MinPrice:            uint256.NewInt(10),
			MaxLength:           50,
			BaseLength:          4,
			PrecisionMultiplier: uint256.NewInt(1),
			FeePercentage:       222,
		},
	}
}

func (s *SystemSuite) TestBootstrapSeedsDeployment() {
	s.Require().NoError(s.sys.Bootstrap(s.ctx, s.seed))

	rec, err := s.sys.Registry.Record(s.ctx, domain.Root)
	s.Require().NoError(err)
	s.Equal(s.seed.Admin, rec.Owner)

	ok, err := s.sys.Access.HasRole(s.ctx, access.RoleRegistrar, RegistrarAddress)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.sys.Access.HasRole(s.ctx, access.RoleGovernor, s.seed.Governor)
	s.Require().NoError(err)
	s.True(ok)

	resolverAddr, err := s.sys.Registry.ResolverType(s.ctx, registry.ResolverTypeAddress)
	s.Require().NoError(err)
	s.Equal(AddressResolverAddress, resolverAddr)

	asset, err := s.sys.Ledger.Asset(s.ctx, AssetAddress("MEOW"))
	s.Require().NoError(err)
	s.Equal("MEOW", asset.Symbol)

	curve, err := s.sys.Curve.Config(s.ctx, domain.Root)
	s.Require().NoError(err)
	s.Equal(uint64(222), curve.FeePercentage)

	cfg, err := s.sys.Treasury.PaymentConfig(s.ctx, domain.Root)
	s.Require().NoError(err)
	s.Equal(AssetAddress("MEOW"), cfg.Token)
	s.Equal(s.seed.Vault, cfg.Beneficiary)
}

func (s *SystemSuite) TestBootstrapIsIdempotent() {
	s.Require().NoError(s.sys.Bootstrap(s.ctx, s.seed))
	n := s.recorder.Len()

	s.Require().NoError(s.sys.Bootstrap(s.ctx, s.seed))
	s.Equal(n, s.recorder.Len())
}

func (s *SystemSuite) TestBootstrapRejectsZeroAccounts() {
	seed := s.seed
	seed.Vault = common.Address{}
	err := s.sys.Bootstrap(s.ctx, seed)
	s.True(dErrors.HasCode(err, dErrors.CodeZeroAddress))
}

func (s *SystemSuite) TestBootstrapRollsBackOnInvalidCurve() {
	seed := s.seed
	seed.RootCurve.MinPrice = uint256.NewInt(900)

	err := s.sys.Bootstrap(s.ctx, seed)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))

	exists, err := s.sys.Registry.Exists(s.ctx, domain.Root)
	s.Require().NoError(err)
	s.False(exists)
	s.Zero(s.recorder.Len())
}

func (s *SystemSuite) TestSeedFromConfig() {
	cfg := config.BootstrapConfig{
		Governor:     "0x000000000000000000000000000000000000060f",
		Admin:        "0x00000000000000000000000000000000000000ad",
		Vault:        "0x00000000000000000000000000000000000fa017",
		AssetSymbol:  "MEOW",
		AssetDecimal: 18,
		RootCurve: config.RootCurveConfig{
			MaxPrice:            "25000000000000000000000",
			MinPrice:            "2000000000000000000000",
			MaxLength:           50,
			BaseLength:          4,
			PrecisionMultiplier: "10000000000000000",
			FeePercentage:       222,
		},
	}

	seed, err := SeedFromConfig(cfg)
	s.Require().NoError(err)
	s.Equal(common.HexToAddress("0xad"), seed.Admin)
	s.Equal("25000000000000000000000", domain.FormatAmount(seed.RootCurve.MaxPrice))
	s.Require().NoError(seed.RootCurve.Validate())

	cfg.Admin = "not-an-address"
	_, err = SeedFromConfig(cfg)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *SystemSuite) TestQuoteAndLookup() {
	s.Require().NoError(s.sys.Bootstrap(s.ctx, s.seed))
	asset := AssetAddress("MEOW")
	s.Require().NoError(s.sys.Ledger.Mint(s.ctx, s.seed.Admin, asset, s.seed.Admin, uint256.NewInt(10_000)))
	s.Require().NoError(s.sys.Ledger.Approve(s.ctx, s.seed.Admin, asset, TreasuryAddress, uint256.NewInt(10_000)))

	s.Run("root quote", func() {
		q, err := s.sys.Quote(s.ctx, domain.Root, "wilder")
		s.Require().NoError(err)
		s.Equal("666", q.Price)
		s.Equal("0", q.Fee)
		s.Equal("14", q.ProtocolFee)
		s.Equal("680", q.Total)
		s.Equal("STAKE", q.PaymentType)
		s.Equal(asset, q.Token)
		s.Equal(domain.HashPath("wilder"), q.Hash)
	})

	s.Run("subdomain quote follows the distribution config", func() {
		_, err := s.sys.Registrar.RegisterRootDomain(s.ctx, s.seed.Admin, registrar.RootRegistration{
			Label: "wilder",
			DistrConfig: &registrar.DistributionConfig{
				Pricer:      FixedPricerAddress,
				PriceConfig: pricing.FixedConfig{Price: uint256.NewInt(100), FeePercentage: 1000}.Encode(),
				PaymentType: registrar.PaymentStake,
				AccessType:  registrar.AccessOpen,
			},
			PaymentConfig: &treasury.PaymentConfig{Token: asset, Beneficiary: s.seed.Admin},
		})
		s.Require().NoError(err)

		q, err := s.sys.Quote(s.ctx, domain.HashPath("wilder"), "cat")
		s.Require().NoError(err)
		s.Equal("100", q.Price)
		s.Equal("10", q.Fee)
		s.Equal("2", q.ProtocolFee)
		s.Equal("112", q.Total)

		_, err = s.sys.Quote(s.ctx, domain.HashPath("nowhere"), "cat")
		s.True(dErrors.HasCode(err, dErrors.CodeDistributionLockedOrNotExist))
		_, err = s.sys.Quote(s.ctx, domain.Root, "Bad")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidLabel))
	})

	s.Run("lookup", func() {
		view, err := s.sys.Lookup(s.ctx, domain.HashPath("wilder"))
		s.Require().NoError(err)
		s.Equal(s.seed.Admin, view.Owner)
		s.Equal(s.seed.Admin, view.TokenOwner)
		s.Require().NotNil(view.Distribution)
		s.Equal(registrar.AccessOpen, view.Distribution.AccessType)
		s.Require().NotNil(view.Stake)
		s.Equal("666", view.Stake.Amount)

		root, err := s.sys.Lookup(s.ctx, domain.Root)
		s.Require().NoError(err)
		s.Equal(s.seed.Admin, root.Owner)
		s.Nil(root.Stake)

		_, err = s.sys.Lookup(s.ctx, domain.HashPath("nowhere"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
