package registrar_test

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/pricing"
	"zns/internal/registrar"
	"zns/internal/system"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

func (s *RegistrarSuite) TestDistributionConfig() {
	parent := s.registerWilder(s.distribution(registrar.PaymentStake, registrar.AccessOpen))

	s.Run("read includes the pricer config", func() {
		cfg, ok, err := s.sys.Registrar.DistributionConfig(s.ctx, parent)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(system.FixedPricerAddress, cfg.Pricer)
		s.Equal(registrar.PaymentStake, cfg.PaymentType)
		s.Equal(registrar.AccessOpen, cfg.AccessType)
		s.Equal(fixed(100, 1000), cfg.PriceConfig)
	})

	s.Run("unknown domain has no config", func() {
		_, ok, err := s.sys.Registrar.DistributionConfig(s.ctx, domain.HashPath("ghost"))
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("only owner operator or registrar may configure", func() {
		err := s.sys.Registrar.SetDistributionConfigForDomain(s.ctx, s.bob, parent, registrar.DistributionConfig{
			Pricer: system.FixedPricerAddress,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

		err = s.sys.Registrar.SetAccessTypeForDomain(s.ctx, s.bob, parent, registrar.AccessLocked)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

		err = s.sys.Registrar.UpdateMintlistForDomain(s.ctx, s.bob, parent, []common.Address{s.bob}, []bool{true})
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("rejects unknown enum values and bad pricers", func() {
		err := s.sys.Registrar.SetPaymentTypeForDomain(s.ctx, s.alice, parent, registrar.PaymentType(7))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = s.sys.Registrar.SetAccessTypeForDomain(s.ctx, s.alice, parent, registrar.AccessType(9))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = s.sys.Registrar.SetPricerDataForDomain(s.ctx, s.alice, parent, common.HexToAddress("0xbad"), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = s.sys.Registrar.UpdateMintlistForDomain(s.ctx, s.alice, parent, []common.Address{s.bob}, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("switching pricers reprices children", func() {
		curve := pricing.CurveConfig{
			MaxPrice:            uint256.NewInt(500),
			MinPrice:            uint256.NewInt(5),
			MaxLength:           40,
			BaseLength:          3,
			PrecisionMultiplier: uint256.NewInt(1),
			FeePercentage:       0,
		}
		s.Require().NoError(s.sys.Registrar.SetPricerDataForDomain(s.ctx, s.alice, parent, system.CurvePricerAddress, curve.Encode()))

		cfg, _, err := s.sys.Registrar.DistributionConfig(s.ctx, parent)
		s.Require().NoError(err)
		s.Equal(system.CurvePricerAddress, cfg.Pricer)
		s.Equal(curve.Encode(), cfg.PriceConfig)

		escrow := s.bal(system.TreasuryAddress)
		hash, err := s.sys.Registrar.RegisterSubdomain(s.ctx, s.bob, registrar.SubdomainRegistration{Parent: parent, Label: "cats"})
		s.Require().NoError(err)
		// 3*500/4 = 375 staked
		s.Equal(escrow+375, s.bal(system.TreasuryAddress))
		stake, _, err := s.sys.Treasury.Stake(s.ctx, hash)
		s.Require().NoError(err)
		s.Equal("375", stake.Amount)
	})

	s.Run("invalid price config rolls back the switch", func() {
		bad := pricing.CurveConfig{
			MaxPrice:            uint256.NewInt(100),
			MinPrice:            uint256.NewInt(90),
			MaxLength:           40,
			BaseLength:          3,
			PrecisionMultiplier: uint256.NewInt(1),
		}
		err := s.sys.Registrar.SetPricerDataForDomain(s.ctx, s.alice, parent, system.CurvePricerAddress, bad.Encode())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPriceConfig))

		cfg, _, err := s.sys.Registrar.DistributionConfig(s.ctx, parent)
		s.Require().NoError(err)
		s.NotEqual(bad.Encode(), cfg.PriceConfig)
	})

	s.Run("events carry readable types", func() {
		evt, ok := s.recorder.Last(registrar.EventDistributionConfigSet)
		s.Require().True(ok)
		var payload registrar.DistributionConfigSet
		s.Require().NoError(evt.Decode(&payload))
		s.Equal("STAKE", payload.PaymentType)
		s.Equal("OPEN", payload.AccessType)
	})
}

func (s *RegistrarSuite) TestPause() {
	s.Run("only admins toggle the pause", func() {
		err := s.sys.Registrar.PauseRegistration(s.ctx, s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

		s.Require().NoError(s.sys.Registrar.PauseRegistration(s.ctx, s.admin))
		paused, err := s.sys.Registrar.Paused(s.ctx)
		s.Require().NoError(err)
		s.True(paused)

		err = s.sys.Registrar.PauseRegistration(s.ctx, s.admin)
		s.True(dErrors.HasCode(err, dErrors.CodeValueUnchanged))
	})

	s.Run("paused registration rejects the public", func() {
		_, err := s.sys.Registrar.RegisterRootDomain(s.ctx, s.alice, registrar.RootRegistration{Label: "wilder"})
		s.True(dErrors.HasCode(err, dErrors.CodeRegistrationPaused))
	})

	s.Run("admins register while paused", func() {
		hash, err := s.sys.Registrar.RegisterRootDomain(s.ctx, s.admin, registrar.RootRegistration{Label: "reserved"})
		s.Require().NoError(err)
		s.Equal(s.admin, s.owner(hash))
	})

	s.Run("unpause resumes registration", func() {
		s.Require().NoError(s.sys.Registrar.UnpauseRegistration(s.ctx, s.admin))
		_, err := s.sys.Registrar.RegisterRootDomain(s.ctx, s.alice, registrar.RootRegistration{Label: "wilder"})
		s.Require().NoError(err)

		err = s.sys.Registrar.UnpauseRegistration(s.ctx, s.admin)
		s.True(dErrors.HasCode(err, dErrors.CodeValueUnchanged))
		_, ok := s.recorder.Last(registrar.EventRegistrationUnpaused)
		s.True(ok)
	})
}
