package treasury

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/access"
)

// Ledger moves payment assets. The treasury acts as spender for pulls from
// registrants and as holder for refunds out of escrow.
type Ledger interface {
	Transfer(ctx context.Context, caller, token, to common.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, caller, token, from, to common.Address, amount *uint256.Int) error
}

// FeeQuoter is the root pricing policy; its fee percentage at the root is
// the protocol fee.
type FeeQuoter interface {
	FeeForPrice(ctx context.Context, parent common.Hash, price *uint256.Int) (*uint256.Int, error)
}

// Authorizer decides who may change a domain's payment config.
type Authorizer interface {
	AuthorizeDomain(ctx context.Context, hash common.Hash, caller common.Address) error
}

// RoleChecker guards the fund-moving operations.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, account common.Address) error
}
