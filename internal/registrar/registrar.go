// Package registrar is the registration state machine.
//
// It ties ownership, pricing, payment and access control together: a
// registration validates the label, checks the parent's distribution
// config, quotes through the parent's pricer, collects payment through the
// treasury, then records the domain and mints its ownership token. Every
// operation runs as one unit of work and leaves no partial state behind.
package registrar

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/access"
	"zns/internal/events"
	"zns/internal/pricing"
	"zns/internal/registrar/metrics"
	"zns/internal/registry"
	"zns/internal/state"
	"zns/internal/treasury"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

const source = "registrar"

// Deps are the collaborators of the Registrar.
type Deps struct {
	Roles    RoleChecker
	Registry Registry
	Treasury Treasury
	Pricers  Pricers
	// RootPricer prices top-level domains from its config at the root.
	RootPricer pricing.Policy
	Token      DomainToken
	Resolver   AddressResolver
}

// Registrar registers, revokes and configures domains.
type Registrar struct {
	runner  *state.Runner
	deps    Deps
	self    common.Address
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Registrar.
type Option func(*Registrar)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// WithMetrics sets the registrar metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registrar) {
		r.metrics = m
	}
}

// New creates a Registrar acting as self, which must hold the registrar role.
func New(runner *state.Runner, deps Deps, self common.Address, opts ...Option) *Registrar {
	r := &Registrar{runner: runner, deps: deps, self: self}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Address is the account the registrar acts as.
func (r *Registrar) Address() common.Address {
	return r.self
}

type registration struct {
	parent          common.Hash
	root            bool
	label           string
	tokenOwner      common.Address
	tokenURI        string
	resolverAddress common.Address
	distrConfig     *DistributionConfig
	paymentConfig   *treasury.PaymentConfig
}

// RegisterRootDomain registers a top-level domain, priced by the root
// policy and paid as a stake.
func (r *Registrar) RegisterRootDomain(ctx context.Context, caller common.Address, req RootRegistration) (common.Hash, error) {
	start := time.Now()
	defer r.metrics.ObserveRegistration(start)

	var hash common.Hash
	err := r.runner.Run(ctx, "registrar.register_root", func(ctx context.Context) error {
		var err error
		hash, err = r.register(ctx, caller, registration{
			parent:          domain.Root,
			root:            true,
			label:           req.Label,
			tokenOwner:      req.TokenOwner,
			tokenURI:        req.TokenURI,
			resolverAddress: req.ResolverAddress,
			distrConfig:     req.DistrConfig,
			paymentConfig:   req.PaymentConfig,
		})
		return err
	})
	if err != nil {
		r.reject(ctx, "root", err)
		return common.Hash{}, err
	}
	r.metrics.IncrementRegistrations("root", 1)
	return hash, nil
}

// RegisterSubdomain registers a child of req.Parent.
func (r *Registrar) RegisterSubdomain(ctx context.Context, caller common.Address, req SubdomainRegistration) (common.Hash, error) {
	start := time.Now()
	defer r.metrics.ObserveRegistration(start)

	if req.Parent == domain.Root {
		err := dErrors.New(dErrors.CodeZeroParentHash, "parent hash is empty")
		r.reject(ctx, "subdomain", err)
		return common.Hash{}, err
	}
	var hash common.Hash
	err := r.runner.Run(ctx, "registrar.register_subdomain", func(ctx context.Context) error {
		var err error
		hash, err = r.register(ctx, caller, subdomain(req))
		return err
	})
	if err != nil {
		r.reject(ctx, "subdomain", err)
		return common.Hash{}, err
	}
	r.metrics.IncrementRegistrations("subdomain", 1)
	return hash, nil
}

// RegisterSubdomainBulk registers reqs in order as one unit of work. An item
// with a zero Parent is registered under the previous item's domain; the
// first item must name its parent.
func (r *Registrar) RegisterSubdomainBulk(ctx context.Context, caller common.Address, reqs []SubdomainRegistration) ([]common.Hash, error) {
	start := time.Now()
	defer r.metrics.ObserveRegistration(start)

	if len(reqs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no registrations given")
	}
	if reqs[0].Parent == domain.Root {
		err := dErrors.New(dErrors.CodeZeroParentHash, "first registration must name its parent")
		r.reject(ctx, "bulk", err)
		return nil, err
	}
	hashes := make([]common.Hash, 0, len(reqs))
	err := r.runner.Run(ctx, "registrar.register_bulk", func(ctx context.Context) error {
		var prev common.Hash
		for _, req := range reqs {
			if req.Parent == domain.Root {
				req.Parent = prev
			}
			hash, err := r.register(ctx, caller, subdomain(req))
			if err != nil {
				return err
			}
			hashes = append(hashes, hash)
			prev = hash
		}
		return nil
	})
	if err != nil {
		r.reject(ctx, "bulk", err)
		return nil, err
	}
	r.metrics.IncrementRegistrations("subdomain", len(hashes))
	return hashes, nil
}

func subdomain(req SubdomainRegistration) registration {
	return registration{
		parent:          req.Parent,
		label:           req.Label,
		tokenOwner:      req.TokenOwner,
		tokenURI:        req.TokenURI,
		resolverAddress: req.ResolverAddress,
		distrConfig:     req.DistrConfig,
		paymentConfig:   req.PaymentConfig,
	}
}

// register runs inside the caller's unit of work.
func (r *Registrar) register(ctx context.Context, caller common.Address, req registration) (common.Hash, error) {
	if err := r.checkPaused(ctx, caller); err != nil {
		return common.Hash{}, err
	}
	if err := domain.ValidateLabel(req.label); err != nil {
		return common.Hash{}, err
	}
	hash := domain.HashOf(req.parent, req.label)
	exists, err := r.deps.Registry.Exists(ctx, hash)
	if err != nil {
		return common.Hash{}, err
	}
	if exists {
		return common.Hash{}, dErrors.Newf(dErrors.CodeDomainAlreadyExists, "domain %s already exists", hash.Hex())
	}

	registrant := caller
	price, fee := domain.Zero(), domain.Zero()
	if req.root {
		if price, _, err = r.deps.RootPricer.PriceAndFee(ctx, domain.Root, req.label, true); err != nil {
			return common.Hash{}, err
		}
		if err := r.deps.Treasury.StakeForDomain(ctx, r.self, domain.Root, hash, caller, price, fee); err != nil {
			return common.Hash{}, err
		}
	} else {
		if registrant, price, fee, err = r.collectForChild(ctx, caller, req.parent, hash, req.label); err != nil {
			return common.Hash{}, err
		}
	}

	resolverType := ""
	if !domain.IsZero(req.resolverAddress) {
		resolverType = registry.ResolverTypeAddress
	}
	if err := r.deps.Registry.CreateDomainRecord(ctx, r.self, hash, registrant, resolverType); err != nil {
		return common.Hash{}, err
	}
	tokenOwner := req.tokenOwner
	if domain.IsZero(tokenOwner) {
		tokenOwner = registrant
	}
	if err := r.deps.Token.Mint(ctx, r.self, tokenOwner, domain.TokenID(hash), req.tokenURI); err != nil {
		return common.Hash{}, wrapError(err, "failed to mint domain token")
	}
	if resolverType != "" {
		if err := r.deps.Resolver.SetAddress(ctx, r.self, hash, req.resolverAddress); err != nil {
			return common.Hash{}, wrapError(err, "failed to set domain address")
		}
	}
	if req.distrConfig != nil {
		if err := r.applyDistribution(ctx, hash, *req.distrConfig); err != nil {
			return common.Hash{}, err
		}
	}
	if req.paymentConfig != nil && !domain.IsZero(req.paymentConfig.Beneficiary) {
		if err := r.deps.Treasury.SetPaymentConfig(ctx, r.self, hash, *req.paymentConfig); err != nil {
			return common.Hash{}, err
		}
	}

	r.logInfo(ctx, "domain registered",
		"domain", hash.Hex(),
		"parent", req.parent.Hex(),
		"label", req.label,
		"registrant", registrant.Hex(),
		"price", price.Dec(),
	)
	return hash, r.emit(ctx, EventDomainRegistered, hash, DomainRegistered{
		Parent:     req.parent,
		Label:      req.label,
		Registrant: registrant,
		TokenOwner: tokenOwner,
		TokenURI:   req.tokenURI,
		Resolver:   req.resolverAddress,
		Price:      price.Dec(),
		Fee:        fee.Dec(),
	})
}

// collectForChild enforces the parent's access rules and takes payment.
// The parent's owner and operators register for free on the owner's behalf.
func (r *Registrar) collectForChild(ctx context.Context, caller common.Address, parent, hash common.Hash, label string) (common.Address, *uint256.Int, *uint256.Int, error) {
	zero := domain.Zero()
	parentExists, err := r.deps.Registry.Exists(ctx, parent)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	if !parentExists {
		return common.Address{}, nil, nil, dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist,
			"parent %s does not exist", parent.Hex())
	}
	cfg, found, err := r.loadDistribution(ctx, parent)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	privileged, err := r.deps.Registry.IsOwnerOrOperator(ctx, parent, caller)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	// An unconfigured parent behaves as locked.
	if !found && !privileged {
		return common.Address{}, nil, nil, dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist,
			"parent %s is not open for registration", parent.Hex())
	}
	if !privileged {
		switch cfg.AccessType {
		case AccessOpen:
		case AccessMintlist:
			listed, err := r.mintlisted(ctx, parent, caller)
			if err != nil {
				return common.Address{}, nil, nil, err
			}
			if !listed {
				return common.Address{}, nil, nil, dErrors.Newf(dErrors.CodeSenderNotApproved,
					"%s is not mintlisted for %s", caller.Hex(), parent.Hex())
			}
		default:
			return common.Address{}, nil, nil, dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist,
				"parent %s is locked", parent.Hex())
		}
	}
	if privileged {
		rec, err := r.deps.Registry.Record(ctx, parent)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		return rec.Owner, zero, zero, nil
	}

	if domain.IsZero(cfg.Pricer) {
		return common.Address{}, nil, nil, dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist,
			"parent %s has no pricer configured", parent.Hex())
	}
	pricer, err := r.deps.Pricers.Lookup(cfg.Pricer)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	price, fee, err := pricer.PriceAndFee(ctx, parent, label, true)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	switch cfg.PaymentType {
	case PaymentStake:
		err = r.deps.Treasury.StakeForDomain(ctx, r.self, parent, hash, caller, price, fee)
	default:
		fee = zero
		err = r.deps.Treasury.ProcessDirectPayment(ctx, r.self, parent, hash, caller, price, fee)
	}
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return caller, price, fee, nil
}

// RevokeDomain destroys hash. The caller must own both its record and its
// token. The stake is refunded to the caller and the domain's own children
// lose the ability to register further descendants until reconfigured.
func (r *Registrar) RevokeDomain(ctx context.Context, caller common.Address, hash common.Hash) error {
	err := r.runner.Run(ctx, "registrar.revoke", func(ctx context.Context) error {
		rec, err := r.deps.Registry.Record(ctx, hash)
		if err != nil {
			return err
		}
		id := domain.TokenID(hash)
		tokenOwner, err := r.deps.Token.OwnerOf(ctx, id)
		if err != nil {
			return wrapError(err, "failed to read token owner")
		}
		if rec.Owner != caller || tokenOwner != caller {
			return dErrors.Newf(dErrors.CodeNotBothOwner, "%s must own both the record and the token of %s", caller.Hex(), hash.Hex())
		}
		if err := r.deps.Treasury.UnstakeForDomain(ctx, r.self, hash, caller); err != nil {
			return err
		}
		if err := r.deps.Registry.DeleteRecord(ctx, r.self, hash); err != nil {
			return err
		}
		if err := r.deps.Token.Burn(ctx, r.self, id); err != nil {
			return wrapError(err, "failed to burn domain token")
		}
		if err := r.lock(ctx, hash); err != nil {
			return err
		}
		if _, err := r.bumpGeneration(ctx, hash); err != nil {
			return err
		}
		r.logInfo(ctx, "domain revoked", "domain", hash.Hex(), "owner", caller.Hex())
		return r.emit(ctx, EventDomainRevoked, hash, OwnerChanged{From: caller})
	})
	if err != nil {
		return err
	}
	r.metrics.IncrementRevocations()
	return nil
}

// ReclaimDomain points the record of hash at the caller, who must hold its
// token. Funds and configuration are untouched.
func (r *Registrar) ReclaimDomain(ctx context.Context, caller common.Address, hash common.Hash) error {
	err := r.runner.Run(ctx, "registrar.reclaim", func(ctx context.Context) error {
		rec, err := r.deps.Registry.Record(ctx, hash)
		if err != nil {
			return err
		}
		tokenOwner, err := r.deps.Token.OwnerOf(ctx, domain.TokenID(hash))
		if err != nil {
			return wrapError(err, "failed to read token owner")
		}
		if tokenOwner != caller {
			return dErrors.Newf(dErrors.CodeNotTokenOwner, "%s does not hold the token of %s", caller.Hex(), hash.Hex())
		}
		if err := r.deps.Registry.UpdateDomainOwner(ctx, r.self, hash, caller); err != nil {
			return err
		}
		return r.emit(ctx, EventDomainReclaimed, hash, OwnerChanged{From: rec.Owner, To: caller})
	})
	if err != nil {
		return err
	}
	r.metrics.IncrementReclaims()
	return nil
}

// AssignDomainToken moves the token of hash to to on behalf of the record
// owner or an operator, leaving the record as is.
func (r *Registrar) AssignDomainToken(ctx context.Context, caller common.Address, hash common.Hash, to common.Address) error {
	if domain.IsZero(to) {
		return dErrors.New(dErrors.CodeZeroAddress, "token recipient is the zero address")
	}
	return r.runner.Run(ctx, "registrar.assign_token", func(ctx context.Context) error {
		ok, err := r.deps.Registry.IsOwnerOrOperator(ctx, hash, caller)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.Newf(dErrors.CodeNotAuthorized, "%s is not owner or operator of %s", caller.Hex(), hash.Hex())
		}
		id := domain.TokenID(hash)
		from, err := r.deps.Token.OwnerOf(ctx, id)
		if err != nil {
			return wrapError(err, "failed to read token owner")
		}
		if err := r.deps.Token.TransferOverride(ctx, r.self, to, id); err != nil {
			return wrapError(err, "failed to reassign domain token")
		}
		return r.emit(ctx, EventDomainTokenReassigned, hash, OwnerChanged{From: from, To: to})
	})
}

func (r *Registrar) reject(ctx context.Context, kind string, err error) {
	code := string(dErrors.CodeOf(err))
	if code == "" {
		code = string(dErrors.CodeInternal)
	}
	r.metrics.IncrementRejections(code)
	if r.logger != nil && !dErrors.IsDomain(err) {
		r.logger.ErrorContext(ctx, "registration failed", "kind", kind, "error", err)
	}
}

func (r *Registrar) emit(ctx context.Context, typ events.Type, hash common.Hash, payload any) error {
	evt, err := events.New(ctx, source, typ, hash, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}

func (r *Registrar) logInfo(ctx context.Context, msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.InfoContext(ctx, msg, args...)
}

func (r *Registrar) isAdmin(ctx context.Context, caller common.Address) (bool, error) {
	return r.deps.Roles.HasRole(ctx, access.RoleAdmin, caller)
}
