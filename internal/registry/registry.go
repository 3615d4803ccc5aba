// Package registry is the canonical ownership map: domain hash to owner and
// resolver, plus operator delegation. Registry is the only writer of domain
// records; the registrar changes them through the methods below while
// holding the registrar role.
package registry

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/access"
	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// ResolverTypeAddress is the resolver type that maps a domain to an account.
const ResolverTypeAddress = "address"

const source = "registry"

// RoleChecker answers role membership questions.
type RoleChecker interface {
	HasRole(ctx context.Context, role access.Role, account common.Address) (bool, error)
	CheckRole(ctx context.Context, role access.Role, account common.Address) error
}

// Record is the stored state of an existing domain.
type Record struct {
	Owner    common.Address `json:"owner"`
	Resolver common.Address `json:"resolver"`
}

// Registry reads and writes domain records.
type Registry struct {
	runner *state.Runner
	roles  RoleChecker
	logger *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a Registry.
func New(runner *state.Runner, roles RoleChecker, opts ...Option) *Registry {
	r := &Registry{runner: runner, roles: roles}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func recordKey(hash common.Hash) []byte {
	return state.Key(state.PrefixRecord, hash.Bytes())
}

func operatorKey(owner, operator common.Address) []byte {
	return state.Key(state.PrefixOperator, owner.Bytes(), operator.Bytes())
}

func resolverTypeKey(resolverType string) []byte {
	return state.Key(state.PrefixResolverType, domain.Keccak256([]byte(resolverType)).Bytes())
}

// Initialize records rootOwner as the owner of the tree root. It is a no-op
// once the root has an owner.
func (r *Registry) Initialize(ctx context.Context, rootOwner common.Address) error {
	if domain.IsZero(rootOwner) {
		return dErrors.New(dErrors.CodeZeroAddress, "root owner is the zero address")
	}
	return r.runner.Run(ctx, "registry.initialize", func(ctx context.Context) error {
		exists, err := r.Exists(ctx, domain.Root)
		if err != nil || exists {
			return err
		}
		return r.putRecord(ctx, domain.Root, Record{Owner: rootOwner})
	})
}

// Exists reports whether hash has a record.
func (r *Registry) Exists(ctx context.Context, hash common.Hash) (bool, error) {
	var exists bool
	err := r.runner.View(ctx, func(ctx context.Context) error {
		var err error
		exists, err = state.Has(ctx, recordKey(hash))
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read domain record")
	}
	return exists, nil
}

// Record returns the record of hash or CodeNotFound.
func (r *Registry) Record(ctx context.Context, hash common.Hash) (Record, error) {
	rec, found, err := r.load(ctx, hash)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, dErrors.Newf(dErrors.CodeNotFound, "domain %s does not exist", hash.Hex())
	}
	return rec, nil
}

// Owner returns the owner of hash, or the zero address if it does not exist.
func (r *Registry) Owner(ctx context.Context, hash common.Hash) (common.Address, error) {
	rec, _, err := r.load(ctx, hash)
	return rec.Owner, err
}

// Resolver returns the resolver of hash, or the zero address.
func (r *Registry) Resolver(ctx context.Context, hash common.Hash) (common.Address, error) {
	rec, _, err := r.load(ctx, hash)
	return rec.Resolver, err
}

// IsOperatorFor reports whether operator may act for owner.
func (r *Registry) IsOperatorFor(ctx context.Context, operator, owner common.Address) (bool, error) {
	var allowed bool
	err := r.runner.View(ctx, func(ctx context.Context) error {
		var err error
		allowed, err = state.Has(ctx, operatorKey(owner, operator))
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read operator")
	}
	return allowed, nil
}

// IsOwnerOrOperator reports whether candidate owns hash or is an operator
// of its owner. Nobody owns a domain that does not exist.
func (r *Registry) IsOwnerOrOperator(ctx context.Context, hash common.Hash, candidate common.Address) (bool, error) {
	owner, err := r.Owner(ctx, hash)
	if err != nil {
		return false, err
	}
	if domain.IsZero(owner) || domain.IsZero(candidate) {
		return false, nil
	}
	if owner == candidate {
		return true, nil
	}
	return r.IsOperatorFor(ctx, candidate, owner)
}

// AuthorizeDomain fails with CodeNotAuthorized unless caller owns hash, is
// an operator of its owner, or holds the registrar role.
func (r *Registry) AuthorizeDomain(ctx context.Context, hash common.Hash, caller common.Address) error {
	ok, err := r.IsOwnerOrOperator(ctx, hash, caller)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	isRegistrar, err := r.roles.HasRole(ctx, access.RoleRegistrar, caller)
	if err != nil {
		return err
	}
	if !isRegistrar {
		return dErrors.Newf(dErrors.CodeNotAuthorized, "%s is not owner or operator of %s", caller.Hex(), hash.Hex())
	}
	return nil
}

// SetOwnersOperator lets operator act on every domain caller owns, or
// withdraws that permission.
func (r *Registry) SetOwnersOperator(ctx context.Context, caller, operator common.Address, allowed bool) error {
	if domain.IsZero(operator) {
		return dErrors.New(dErrors.CodeZeroAddress, "operator is the zero address")
	}
	return r.runner.Run(ctx, "registry.set_operator", func(ctx context.Context) error {
		key := operatorKey(caller, operator)
		var err error
		if allowed {
			err = state.Put(ctx, key, []byte{1})
		} else {
			err = state.Delete(ctx, key)
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store operator")
		}
		return r.emit(ctx, EventOperatorSet, domain.Root, OperatorSet{Owner: caller, Operator: operator, Allowed: allowed})
	})
}

// CreateDomainRecord stores a new record. Registrar only. An empty
// resolverType leaves the resolver unset.
func (r *Registry) CreateDomainRecord(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address, resolverType string) error {
	return r.runner.Run(ctx, "registry.create_record", func(ctx context.Context) error {
		if err := r.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		if domain.IsZero(owner) {
			return dErrors.New(dErrors.CodeZeroAddress, "owner is the zero address")
		}
		exists, err := r.Exists(ctx, hash)
		if err != nil {
			return err
		}
		if exists {
			return dErrors.Newf(dErrors.CodeDomainAlreadyExists, "domain %s already exists", hash.Hex())
		}
		resolver, err := r.resolverFor(ctx, resolverType)
		if err != nil {
			return err
		}
		return r.putRecord(ctx, hash, Record{Owner: owner, Resolver: resolver})
	})
}

// UpdateDomainRecord replaces owner and resolver. Owner or operator only.
func (r *Registry) UpdateDomainRecord(ctx context.Context, caller common.Address, hash common.Hash, resolverType string, owner common.Address) error {
	return r.runner.Run(ctx, "registry.update_record", func(ctx context.Context) error {
		if err := r.requireOwnerOrOperator(ctx, hash, caller); err != nil {
			return err
		}
		if domain.IsZero(owner) {
			return dErrors.New(dErrors.CodeZeroAddress, "owner is the zero address")
		}
		resolver, err := r.resolverFor(ctx, resolverType)
		if err != nil {
			return err
		}
		return r.putRecord(ctx, hash, Record{Owner: owner, Resolver: resolver})
	})
}

// UpdateDomainOwner changes the owner. Owner, operator or registrar.
func (r *Registry) UpdateDomainOwner(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address) error {
	return r.runner.Run(ctx, "registry.update_owner", func(ctx context.Context) error {
		rec, err := r.Record(ctx, hash)
		if err != nil {
			return err
		}
		if err := r.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		if domain.IsZero(owner) {
			return dErrors.New(dErrors.CodeZeroAddress, "owner is the zero address")
		}
		if rec.Owner == owner {
			return nil
		}
		rec.Owner = owner
		if err := state.PutJSON(ctx, recordKey(hash), rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain record")
		}
		return r.emit(ctx, EventDomainOwnerSet, hash, DomainOwnerSet{Owner: owner})
	})
}

// UpdateDomainResolver points the domain at the resolver registered for
// resolverType. Owner or operator only.
func (r *Registry) UpdateDomainResolver(ctx context.Context, caller common.Address, hash common.Hash, resolverType string) error {
	return r.runner.Run(ctx, "registry.update_resolver", func(ctx context.Context) error {
		if err := r.requireOwnerOrOperator(ctx, hash, caller); err != nil {
			return err
		}
		rec, err := r.Record(ctx, hash)
		if err != nil {
			return err
		}
		if rec.Resolver, err = r.resolverFor(ctx, resolverType); err != nil {
			return err
		}
		if err := state.PutJSON(ctx, recordKey(hash), rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain record")
		}
		return r.emit(ctx, EventDomainResolverSet, hash, DomainResolverSet{Resolver: rec.Resolver})
	})
}

// DeleteRecord removes a record. Registrar only.
func (r *Registry) DeleteRecord(ctx context.Context, caller common.Address, hash common.Hash) error {
	return r.runner.Run(ctx, "registry.delete_record", func(ctx context.Context) error {
		if err := r.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		if _, err := r.Record(ctx, hash); err != nil {
			return err
		}
		if err := state.Delete(ctx, recordKey(hash)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete domain record")
		}
		return r.emit(ctx, EventDomainRecordDeleted, hash, DomainRecordDeleted{Sender: caller})
	})
}

// ResolverType returns the resolver registered for resolverType, or the zero address.
func (r *Registry) ResolverType(ctx context.Context, resolverType string) (common.Address, error) {
	var addr common.Address
	err := r.runner.View(ctx, func(ctx context.Context) error {
		raw, err := state.Get(ctx, resolverTypeKey(resolverType))
		if err != nil {
			return err
		}
		addr = common.BytesToAddress(raw)
		return nil
	})
	if err != nil && !isNotFound(err) {
		return common.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read resolver type")
	}
	return addr, nil
}

// AddResolverType registers resolver under resolverType. Admin only.
func (r *Registry) AddResolverType(ctx context.Context, caller common.Address, resolverType string, resolver common.Address) error {
	return r.runner.Run(ctx, "registry.add_resolver_type", func(ctx context.Context) error {
		if err := r.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if resolverType == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "resolver type is empty")
		}
		if domain.IsZero(resolver) {
			return dErrors.New(dErrors.CodeZeroAddress, "resolver is the zero address")
		}
		if err := state.Put(ctx, resolverTypeKey(resolverType), resolver.Bytes()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store resolver type")
		}
		return r.emit(ctx, EventResolverAdded, domain.Root, ResolverTypeChanged{Type: resolverType, Resolver: resolver})
	})
}

// DeleteResolverType removes a resolver type. Admin only.
func (r *Registry) DeleteResolverType(ctx context.Context, caller common.Address, resolverType string) error {
	return r.runner.Run(ctx, "registry.delete_resolver_type", func(ctx context.Context) error {
		if err := r.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if err := state.Delete(ctx, resolverTypeKey(resolverType)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete resolver type")
		}
		return r.emit(ctx, EventResolverDeleted, domain.Root, ResolverTypeChanged{Type: resolverType})
	})
}

func (r *Registry) requireOwnerOrOperator(ctx context.Context, hash common.Hash, caller common.Address) error {
	ok, err := r.IsOwnerOrOperator(ctx, hash, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeNotAuthorized, "%s is not owner or operator of %s", caller.Hex(), hash.Hex())
	}
	return nil
}

func (r *Registry) resolverFor(ctx context.Context, resolverType string) (common.Address, error) {
	if resolverType == "" {
		return common.Address{}, nil
	}
	addr, err := r.ResolverType(ctx, resolverType)
	if err != nil {
		return common.Address{}, err
	}
	if domain.IsZero(addr) {
		return common.Address{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown resolver type %q", resolverType)
	}
	return addr, nil
}

func (r *Registry) load(ctx context.Context, hash common.Hash) (Record, bool, error) {
	var (
		rec   Record
		found bool
	)
	err := r.runner.View(ctx, func(ctx context.Context) error {
		var err error
		found, err = state.GetJSON(ctx, recordKey(hash), &rec)
		return err
	})
	if err != nil {
		return Record{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read domain record")
	}
	return rec, found, nil
}

func (r *Registry) putRecord(ctx context.Context, hash common.Hash, rec Record) error {
	if err := state.PutJSON(ctx, recordKey(hash), rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain record")
	}
	if r.logger != nil {
		r.logger.DebugContext(ctx, "domain record set", "domain", hash.Hex(), "owner", rec.Owner.Hex())
	}
	return r.emit(ctx, EventDomainRecordSet, hash, DomainRecordSet{Owner: rec.Owner, Resolver: rec.Resolver})
}

func (r *Registry) emit(ctx context.Context, typ events.Type, hash common.Hash, payload any) error {
	evt, err := events.New(ctx, source, typ, hash, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}
