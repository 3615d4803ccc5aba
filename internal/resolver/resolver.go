// Package resolver maps domains to the account they point at.
package resolver

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
	"zns/internal/state"
	dErrors "zns/pkg/domain-errors"
)

const source = "resolver"

const EventAddressSet events.Type = "AddressSet"

// AddressSet is the payload of EventAddressSet.
type AddressSet struct {
	Address common.Address `json:"address"`
}

// Authorizer decides who may change a domain's address.
type Authorizer interface {
	AuthorizeDomain(ctx context.Context, hash common.Hash, caller common.Address) error
}

// AddressResolver stores one account per domain.
type AddressResolver struct {
	runner *state.Runner
	auth   Authorizer
	self   common.Address
}

// New creates a resolver living at self, the address registered for the
// address resolver type.
func New(runner *state.Runner, auth Authorizer, self common.Address) *AddressResolver {
	return &AddressResolver{runner: runner, auth: auth, self: self}
}

// Address is where this resolver is registered.
func (r *AddressResolver) Address() common.Address {
	return r.self
}

func addressKey(hash common.Hash) []byte {
	return state.Key(state.PrefixResolvedAddress, hash.Bytes())
}

// Resolve returns the account of hash, or the zero address if none is set.
func (r *AddressResolver) Resolve(ctx context.Context, hash common.Hash) (common.Address, error) {
	var addr common.Address
	err := r.runner.View(ctx, func(ctx context.Context) error {
		raw, err := state.Get(ctx, addressKey(hash))
		if err != nil {
			return err
		}
		addr = common.BytesToAddress(raw)
		return nil
	})
	if err != nil && !isNotFound(err) {
		return common.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve domain")
	}
	return addr, nil
}

// SetAddress points hash at addr. Owner, operator or registrar.
func (r *AddressResolver) SetAddress(ctx context.Context, caller common.Address, hash common.Hash, addr common.Address) error {
	return r.runner.Run(ctx, "resolver.set_address", func(ctx context.Context) error {
		if err := r.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		if err := state.Put(ctx, addressKey(hash), addr.Bytes()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store address")
		}
		evt, err := events.New(ctx, source, EventAddressSet, hash, AddressSet{Address: addr})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
		}
		return state.Emit(ctx, evt)
	})
}
