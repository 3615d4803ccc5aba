package registrar_test

import (
	"errors"

	"go.uber.org/mock/gomock"

	"zns/internal/registrar"
	"zns/internal/registrar/mocks"
	"zns/internal/system"
	"zns/internal/treasury"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// withToken builds a registrar sharing the suite's state but minting
// through token.
func (s *RegistrarSuite) withToken(token registrar.DomainToken) *registrar.Registrar {
	return registrar.New(s.sys.Runner, registrar.Deps{
		Roles:      s.sys.Access,
		Registry:   s.sys.Registry,
		Treasury:   s.sys.Treasury,
		Pricers:    s.sys.Pricers,
		RootPricer: s.sys.Curve,
		Token:      token,
		Resolver:   s.sys.Resolver,
	}, system.RegistrarAddress)
}

func (s *RegistrarSuite) TestFailedMintRollsBackRegistration() {
	ctrl := gomock.NewController(s.T())
	token := mocks.NewMockDomainToken(ctrl)
	token.EXPECT().
		Mint(gomock.Any(), system.RegistrarAddress, s.alice, domain.TokenID(domain.HashPath("wilder")), "").
		Return(errors.New("token store unavailable"))
	reg := s.withToken(token)

	_, err := reg.RegisterRootDomain(s.ctx, s.alice, registrar.RootRegistration{
		Label:         "wilder",
		DistrConfig:   s.distribution(registrar.PaymentDirect, registrar.AccessOpen),
		PaymentConfig: &treasury.PaymentConfig{Token: s.asset, Beneficiary: s.alice},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	hash := domain.HashPath("wilder")
	exists, err := s.sys.Registry.Exists(s.ctx, hash)
	s.Require().NoError(err)
	s.False(exists)
	_, staked, err := s.sys.Treasury.Stake(s.ctx, hash)
	s.Require().NoError(err)
	s.False(staked)
	s.Equal(uint64(funds), s.bal(s.alice))
	s.Zero(s.bal(system.TreasuryAddress))
	s.Zero(s.recorder.Len())
}

func (s *RegistrarSuite) TestFailedBurnKeepsDomain() {
	hash := s.registerWilder(nil)
	aliceBefore := s.bal(s.alice)

	ctrl := gomock.NewController(s.T())
	token := mocks.NewMockDomainToken(ctrl)
	token.EXPECT().OwnerOf(gomock.Any(), domain.TokenID(hash)).Return(s.alice, nil)
	token.EXPECT().Burn(gomock.Any(), system.RegistrarAddress, domain.TokenID(hash)).
		Return(dErrors.New(dErrors.CodeNotAuthorized, "burn refused"))
	reg := s.withToken(token)

	err := reg.RevokeDomain(s.ctx, s.alice, hash)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	s.Equal(s.alice, s.owner(hash))
	s.Equal(aliceBefore, s.bal(s.alice))
	_, staked, err := s.sys.Treasury.Stake(s.ctx, hash)
	s.Require().NoError(err)
	s.True(staked)
}
