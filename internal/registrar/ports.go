package registrar

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/access"
	"zns/internal/pricing"
	"zns/internal/registry"
	"zns/internal/treasury"
)

// DomainToken is the ownership token collection. The registrar mints,
// burns and force-transfers tokens while holding the registrar role.
type DomainToken interface {
	Mint(ctx context.Context, caller, to common.Address, tokenID *uint256.Int, tokenURI string) error
	Burn(ctx context.Context, caller common.Address, tokenID *uint256.Int) error
	OwnerOf(ctx context.Context, tokenID *uint256.Int) (common.Address, error)
	TransferOverride(ctx context.Context, caller, to common.Address, tokenID *uint256.Int) error
}

// AddressResolver points domains at accounts.
type AddressResolver interface {
	Address() common.Address
	Resolve(ctx context.Context, hash common.Hash) (common.Address, error)
	SetAddress(ctx context.Context, caller common.Address, hash common.Hash, addr common.Address) error
}

// RoleChecker answers role membership questions.
type RoleChecker interface {
	HasRole(ctx context.Context, role access.Role, account common.Address) (bool, error)
	CheckRole(ctx context.Context, role access.Role, account common.Address) error
}

// Registry holds domain records.
type Registry interface {
	Exists(ctx context.Context, hash common.Hash) (bool, error)
	Record(ctx context.Context, hash common.Hash) (registry.Record, error)
	IsOwnerOrOperator(ctx context.Context, hash common.Hash, candidate common.Address) (bool, error)
	AuthorizeDomain(ctx context.Context, hash common.Hash, caller common.Address) error
	CreateDomainRecord(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address, resolverType string) error
	UpdateDomainOwner(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address) error
	DeleteRecord(ctx context.Context, caller common.Address, hash common.Hash) error
}

// Treasury collects and refunds registration payments.
type Treasury interface {
	StakeForDomain(ctx context.Context, caller common.Address, parent, hash common.Hash, registrant common.Address, price, fee *uint256.Int) error
	ProcessDirectPayment(ctx context.Context, caller common.Address, parent, hash common.Hash, payer common.Address, price, fee *uint256.Int) error
	UnstakeForDomain(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address) error
	SetPaymentConfig(ctx context.Context, caller common.Address, hash common.Hash, cfg treasury.PaymentConfig) error
}

// Pricers resolves the pricing policy named in a distribution config.
type Pricers interface {
	Lookup(addr common.Address) (pricing.Policy, error)
}
