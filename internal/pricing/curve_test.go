package pricing

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	"zns/internal/events/publishers/memory"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

type ownerAuth struct {
	owners map[common.Hash]common.Address
}

func (a ownerAuth) AuthorizeDomain(_ context.Context, hash common.Hash, caller common.Address) error {
	if a.owners[hash] != caller {
		return dErrors.New(dErrors.CodeNotAuthorized, "not owner")
	}
	return nil
}

func eth(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func dec(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func scenarioConfig() CurveConfig {
	return CurveConfig{
		MaxPrice:            eth(1000),
		MinPrice:            eth(200),
		MaxLength:           255,
		BaseLength:          4,
		PrecisionMultiplier: dec("10000000000000000"),
		FeePercentage:       222,
	}
}

func validConfig() CurveConfig {
	return CurveConfig{
		MaxPrice:            eth(1000),
		MinPrice:            eth(10),
		MaxLength:           50,
		BaseLength:          4,
		PrecisionMultiplier: dec("10000000000000000"),
		FeePercentage:       500,
	}
}

type CurvePricerSuite struct {
	suite.Suite
	ctx      context.Context
	recorder *memory.Recorder
	pricer   *CurvePricer
	owner    common.Address
	parent   common.Hash
}

func TestCurvePricerSuite(t *testing.T) {
	suite.Run(t, new(CurvePricerSuite))
}

func (s *CurvePricerSuite) SetupTest() {
	s.ctx = context.Background()
	s.recorder = memory.NewRecorder(0)
	runner, err := state.NewRunner(state.NewMemoryStore(), state.WithPublisher(s.recorder))
	s.Require().NoError(err)

	s.owner = common.HexToAddress("0xa11ce")
	s.parent = domain.HashPath("wilder")
	auth := ownerAuth{owners: map[common.Hash]common.Address{s.parent: s.owner}}
	s.pricer = NewCurvePricer(runner, auth, domain.SystemAddress("curve-pricer"))
}

func (s *CurvePricerSuite) TestUnconfiguredParent() {
	_, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, "abc", false)
	s.True(dErrors.HasCode(err, dErrors.CodeDistributionLockedOrNotExist))

	_, ok, err := s.pricer.EncodedConfig(s.ctx, s.parent)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CurvePricerSuite) TestSetPriceConfig() {
	cfg := validConfig()

	s.Run("stranger is rejected", func() {
		err := s.pricer.SetPriceConfig(s.ctx, common.HexToAddress("0xbad"), s.parent, cfg)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("owner stores config", func() {
		s.Require().NoError(s.pricer.SetPriceConfig(s.ctx, s.owner, s.parent, cfg))
		got, err := s.pricer.Config(s.ctx, s.parent)
		s.Require().NoError(err)
		s.Equal(cfg.Encode(), got.Encode())

		evt, ok := s.recorder.Last(EventPriceConfigSet)
		s.Require().True(ok)
		var payload CurveConfigSet
		s.Require().NoError(evt.Decode(&payload))
		s.Equal(cfg.MaxPrice.Dec(), payload.MaxPrice)
		s.Equal(uint64(500), payload.FeePercentage)
	})

	s.Run("spike is rejected and old config kept", func() {
		err := s.pricer.SetPriceConfig(s.ctx, s.owner, s.parent, scenarioConfig())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))
		got, err := s.pricer.Config(s.ctx, s.parent)
		s.Require().NoError(err)
		s.Equal(cfg.Encode(), got.Encode())
	})
}

func (s *CurvePricerSuite) TestPriceAndFee() {
	s.Require().NoError(s.pricer.SetPriceConfig(s.ctx, s.owner, s.parent, validConfig()))

	s.Run("short label costs max price", func() {
		price, fee, err := s.pricer.PriceAndFee(s.ctx, s.parent, "abcd", false)
		s.Require().NoError(err)
		s.Equal(eth(1000), price)
		s.Equal(eth(50), fee)
	})

	s.Run("curve region", func() {
		price, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, "abcdefgh", false)
		s.Require().NoError(err)
		s.Equal(eth(500), price)
	})

	s.Run("long label costs min price", func() {
		label := strings.Repeat("a", 51)
		price, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, label, false)
		s.Require().NoError(err)
		s.Equal(eth(10), price)
	})

	s.Run("invalid label", func() {
		_, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, "Abc", false)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidLabel))
	})

	s.Run("empty label", func() {
		_, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, "", false)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidLength))
	})

	s.Run("skipped validation prices anything", func() {
		price, _, err := s.pricer.PriceAndFee(s.ctx, s.parent, "", true)
		s.Require().NoError(err)
		s.Equal(eth(1000), price)

		price, err = s.pricer.Price(s.ctx, s.parent, "ABCDEFGH", true)
		s.Require().NoError(err)
		s.Equal(eth(500), price)
	})

	s.Run("fee for price", func() {
		fee, err := s.pricer.FeeForPrice(s.ctx, s.parent, eth(2))
		s.Require().NoError(err)
		s.Equal(dec("100000000000000000"), fee)
	})
}

func (s *CurvePricerSuite) TestFieldSetters() {
	s.Require().NoError(s.pricer.SetPriceConfig(s.ctx, s.owner, s.parent, validConfig()))

	s.Run("max price", func() {
		s.Require().NoError(s.pricer.SetMaxPrice(s.ctx, s.owner, s.parent, eth(2000)))
		cfg, err := s.pricer.Config(s.ctx, s.parent)
		s.Require().NoError(err)
		s.Equal(eth(2000), cfg.MaxPrice)

		evt, ok := s.recorder.Last(EventMaxPriceSet)
		s.Require().True(ok)
		var payload ValueSet
		s.Require().NoError(evt.Decode(&payload))
		s.Equal(eth(2000).Dec(), payload.Value)
	})

	s.Run("min price above curve end spikes", func() {
		err := s.pricer.SetMinPrice(s.ctx, s.owner, s.parent, eth(5000))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))
	})

	s.Run("base and max length", func() {
		s.Require().NoError(s.pricer.SetBaseLength(s.ctx, s.owner, s.parent, 6))
		s.Require().NoError(s.pricer.SetMaxLength(s.ctx, s.owner, s.parent, 40))
		cfg, err := s.pricer.Config(s.ctx, s.parent)
		s.Require().NoError(err)
		s.Equal(uint64(6), cfg.BaseLength)
		s.Equal(uint64(40), cfg.MaxLength)
	})

	s.Run("precision multiplier bounds", func() {
		err := s.pricer.SetPrecisionMultiplier(s.ctx, s.owner, s.parent, domain.Zero())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))

		err = s.pricer.SetPrecisionMultiplier(s.ctx, s.owner, s.parent, eth(2))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))

		s.Require().NoError(s.pricer.SetPrecisionMultiplier(s.ctx, s.owner, s.parent, uint256.NewInt(1)))
	})

	s.Run("fee percentage cap", func() {
		err := s.pricer.SetFeePercentage(s.ctx, s.owner, s.parent, domain.PercentageBasis+1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))
		s.Require().NoError(s.pricer.SetFeePercentage(s.ctx, s.owner, s.parent, domain.PercentageBasis))
	})

	s.Run("stranger is rejected", func() {
		err := s.pricer.SetMaxPrice(s.ctx, common.HexToAddress("0xbad"), s.parent, eth(1))
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}

func (s *CurvePricerSuite) TestApplyConfig() {
	s.Run("round trips encoded config", func() {
		raw := validConfig().Encode()
		s.Require().NoError(s.pricer.ApplyConfig(s.ctx, s.owner, s.parent, raw))
		got, ok, err := s.pricer.EncodedConfig(s.ctx, s.parent)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(raw, got)
	})

	s.Run("truncated config", func() {
		err := s.pricer.ApplyConfig(s.ctx, s.owner, s.parent, make([]byte, 64))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))
		s.True(dErrors.HasCode(s.pricer.ValidateConfig(make([]byte, 64)), dErrors.CodeInvalidPriceConfig))
	})
}

func TestConcreteCurveScenario(t *testing.T) {
	cfg := scenarioConfig()

	cases := []struct {
		name  string
		label string
		price string
		fee   string
	}{
		{name: "three characters", label: "abc", price: "1000000000000000000000", fee: "22200000000000000000"},
		{name: "twenty-two characters", label: "abcdefghijklmnopqrstuv", price: "181810000000000000000", fee: "4036182000000000000"},
		{name: "past max length", label: strings.Repeat("a", 300), price: "200000000000000000000", fee: "4440000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := cfg.Price(LabelLength(tc.label))
			if err != nil {
				t.Fatalf("price: %v", err)
			}
			fee, err := cfg.Fee(price)
			if err != nil {
				t.Fatalf("fee: %v", err)
			}
			if price.Dec() != tc.price {
				t.Errorf("price = %s, want %s", price.Dec(), tc.price)
			}
			if fee.Dec() != tc.fee {
				t.Errorf("fee = %s, want %s", fee.Dec(), tc.fee)
			}
		})
	}

	t.Run("config spikes at max length", func(t *testing.T) {
		if err := cfg.Validate(); !dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig) {
			t.Fatalf("expected invalid price config, got %v", err)
		}
	})
}
