package system

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/registrar"
	"zns/internal/treasury"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// DomainView is everything known about one domain.
type DomainView struct {
	Hash         common.Hash                   `json:"hash"`
	TokenID      string                        `json:"tokenId"`
	Owner        common.Address                `json:"owner"`
	TokenOwner   common.Address                `json:"tokenOwner"`
	Resolver     common.Address                `json:"resolver"`
	Address      common.Address                `json:"address"`
	Distribution *registrar.DistributionConfig `json:"distribution,omitempty"`
	Payment      treasury.PaymentConfig        `json:"payment"`
	Stake        *treasury.Stake               `json:"stake,omitempty"`
}

// Lookup reads the record, token, resolution, distribution, payment config
// and stake of hash. The root has no token.
func (s *System) Lookup(ctx context.Context, hash common.Hash) (DomainView, error) {
	rec, err := s.Registry.Record(ctx, hash)
	if err != nil {
		return DomainView{}, err
	}
	id := domain.TokenID(hash)
	view := DomainView{
		Hash:     hash,
		TokenID:  id.Dec(),
		Owner:    rec.Owner,
		Resolver: rec.Resolver,
	}
	if hash != domain.Root {
		if view.TokenOwner, err = s.Token.OwnerOf(ctx, id); err != nil {
			return DomainView{}, err
		}
	}
	if view.Address, err = s.Resolver.Resolve(ctx, hash); err != nil {
		return DomainView{}, err
	}
	cfg, found, err := s.Registrar.DistributionConfig(ctx, hash)
	if err != nil {
		return DomainView{}, err
	}
	if found {
		view.Distribution = &cfg
	}
	if view.Payment, err = s.Treasury.PaymentConfig(ctx, hash); err != nil {
		return DomainView{}, err
	}
	stake, staked, err := s.Treasury.Stake(ctx, hash)
	if err != nil {
		return DomainView{}, err
	}
	if staked {
		view.Stake = &stake
	}
	return view, nil
}

// Quote is what registering a label under a parent costs right now.
type Quote struct {
	Parent      common.Hash    `json:"parent"`
	Label       string         `json:"label"`
	Hash        common.Hash    `json:"hash"`
	PaymentType string         `json:"paymentType"`
	Token       common.Address `json:"token"`
	Price       string         `json:"price"`
	Fee         string         `json:"fee"`
	ProtocolFee string         `json:"protocolFee"`
	Total       string         `json:"total"`
}

// Quote prices label under parent the way a public registration would. A
// zero parent quotes a top-level domain.
func (s *System) Quote(ctx context.Context, parent common.Hash, label string) (Quote, error) {
	if err := domain.ValidateLabel(label); err != nil {
		return Quote{}, err
	}
	q := Quote{Parent: parent, Label: label, Hash: domain.HashOf(parent, label)}

	var price, fee *uint256.Int
	var err error
	if parent == domain.Root {
		q.PaymentType = registrar.PaymentStake.String()
		if price, _, err = s.Curve.PriceAndFee(ctx, domain.Root, label, true); err != nil {
			return Quote{}, err
		}
		fee = domain.Zero()
	} else {
		cfg, found, err := s.Registrar.DistributionConfig(ctx, parent)
		if err != nil {
			return Quote{}, err
		}
		if !found {
			return Quote{}, dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist, "parent %s is not open for registration", parent.Hex())
		}
		q.PaymentType = cfg.PaymentType.String()
		pricer, err := s.Pricers.Lookup(cfg.Pricer)
		if err != nil {
			return Quote{}, err
		}
		if price, fee, err = pricer.PriceAndFee(ctx, parent, label, true); err != nil {
			return Quote{}, err
		}
		if cfg.PaymentType == registrar.PaymentDirect {
			fee = domain.Zero()
		}
	}

	payment, err := s.Treasury.PaymentConfig(ctx, parent)
	if err != nil {
		return Quote{}, err
	}
	q.Token = payment.Token
	subtotal, err := domain.Add(price, fee)
	if err != nil {
		return Quote{}, err
	}
	protocolFee, err := s.Treasury.ProtocolFee(ctx, subtotal)
	if err != nil {
		return Quote{}, err
	}
	total, err := domain.Add(subtotal, protocolFee)
	if err != nil {
		return Quote{}, err
	}
	q.Price = price.Dec()
	q.Fee = fee.Dec()
	q.ProtocolFee = protocolFee.Dec()
	q.Total = total.Dec()
	return q, nil
}
