// Package access holds role membership. Every other component receives a
// Controller through its constructor and asks it before privileged writes.
//
// Roles form a fixed hierarchy: GOVERNOR administers GOVERNOR and ADMIN,
// ADMIN administers REGISTRAR. Only holders of a role's admin role may
// grant or revoke it.
package access

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// Role names a permission set.
type Role string

const (
	RoleGovernor  Role = "GOVERNOR_ROLE"
	RoleAdmin     Role = "ADMIN_ROLE"
	RoleRegistrar Role = "REGISTRAR_ROLE"
)

var adminOf = map[Role]Role{
	RoleGovernor:  RoleGovernor,
	RoleAdmin:     RoleGovernor,
	RoleRegistrar: RoleAdmin,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := adminOf[r]
	return ok
}

// AdminRole returns the role allowed to grant and revoke r.
func (r Role) AdminRole() Role {
	return adminOf[r]
}

// ID is the storage identifier of r.
func (r Role) ID() common.Hash {
	return domain.Keccak256([]byte(r))
}

const (
	EventRoleGranted events.Type = "RoleGranted"
	EventRoleRevoked events.Type = "RoleRevoked"
)

// RoleChanged is the payload of EventRoleGranted and EventRoleRevoked.
type RoleChanged struct {
	Role    Role           `json:"role"`
	Account common.Address `json:"account"`
	Sender  common.Address `json:"sender"`
}

const source = "access"

// Controller reads and writes role membership.
type Controller struct {
	runner *state.Runner
	logger *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller.
func New(runner *state.Runner, opts ...Option) *Controller {
	c := &Controller{runner: runner}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func roleKey(role Role, account common.Address) []byte {
	return state.Key(state.PrefixRole, role.ID().Bytes(), account.Bytes())
}

// Initialize grants the first governors and admins. It bypasses the admin
// check and is meant for bootstrapping an empty store only.
func (c *Controller) Initialize(ctx context.Context, governors, admins []common.Address) error {
	return c.runner.Run(ctx, "access.initialize", func(ctx context.Context) error {
		for _, g := range governors {
			if err := c.grant(ctx, RoleGovernor, g, g); err != nil {
				return err
			}
		}
		for _, a := range admins {
			if err := c.grant(ctx, RoleAdmin, a, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// HasRole reports whether account holds role.
func (c *Controller) HasRole(ctx context.Context, role Role, account common.Address) (bool, error) {
	var has bool
	err := c.runner.View(ctx, func(ctx context.Context) error {
		var err error
		has, err = state.Has(ctx, roleKey(role, account))
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read role")
	}
	return has, nil
}

// CheckRole fails with CodeNotAuthorized unless account holds role.
func (c *Controller) CheckRole(ctx context.Context, role Role, account common.Address) error {
	has, err := c.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !has {
		return dErrors.Newf(dErrors.CodeNotAuthorized, "account %s is missing role %s", account.Hex(), role)
	}
	return nil
}

// GrantRole gives role to account. caller must hold the role's admin role.
func (c *Controller) GrantRole(ctx context.Context, caller common.Address, role Role, account common.Address) error {
	return c.runner.Run(ctx, "access.grant_role", func(ctx context.Context) error {
		if err := c.checkAdmin(ctx, caller, role, account); err != nil {
			return err
		}
		return c.grant(ctx, role, account, caller)
	})
}

// RevokeRole takes role from account. caller must hold the role's admin role.
func (c *Controller) RevokeRole(ctx context.Context, caller common.Address, role Role, account common.Address) error {
	return c.runner.Run(ctx, "access.revoke_role", func(ctx context.Context) error {
		if err := c.checkAdmin(ctx, caller, role, account); err != nil {
			return err
		}
		return c.revoke(ctx, role, account, caller)
	})
}

// RenounceRole drops a role the caller holds.
func (c *Controller) RenounceRole(ctx context.Context, caller common.Address, role Role) error {
	return c.runner.Run(ctx, "access.renounce_role", func(ctx context.Context) error {
		if !role.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", role)
		}
		return c.revoke(ctx, role, caller, caller)
	})
}

func (c *Controller) checkAdmin(ctx context.Context, caller common.Address, role Role, account common.Address) error {
	if !role.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", role)
	}
	if domain.IsZero(account) {
		return dErrors.New(dErrors.CodeZeroAddress, "account is the zero address")
	}
	return c.CheckRole(ctx, role.AdminRole(), caller)
}

func (c *Controller) grant(ctx context.Context, role Role, account, sender common.Address) error {
	if domain.IsZero(account) {
		return dErrors.New(dErrors.CodeZeroAddress, "account is the zero address")
	}
	key := roleKey(role, account)
	has, err := state.Has(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read role")
	}
	if has {
		return nil
	}
	if err := state.Put(ctx, key, []byte{1}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant role")
	}
	c.logInfo(ctx, "role granted", "role", role, "account", account.Hex())
	return c.emit(ctx, EventRoleGranted, RoleChanged{Role: role, Account: account, Sender: sender})
}

func (c *Controller) revoke(ctx context.Context, role Role, account, sender common.Address) error {
	key := roleKey(role, account)
	has, err := state.Has(ctx, key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read role")
	}
	if !has {
		return nil
	}
	if err := state.Delete(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke role")
	}
	c.logInfo(ctx, "role revoked", "role", role, "account", account.Hex())
	return c.emit(ctx, EventRoleRevoked, RoleChanged{Role: role, Account: account, Sender: sender})
}

func (c *Controller) emit(ctx context.Context, typ events.Type, payload any) error {
	evt, err := events.New(ctx, source, typ, domain.Root, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}

func (c *Controller) logInfo(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.InfoContext(ctx, msg, args...)
	}
}
