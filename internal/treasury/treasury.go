// Package treasury collects registration payments.
//
// Under STAKE the registration price is escrowed on the treasury account and
// refunded to whoever owns the domain when it is revoked. Under DIRECT the
// price goes straight to the parent's beneficiary. In both modes the parent
// fee goes to the parent's beneficiary and a protocol fee, priced by the
// root policy, goes to the root beneficiary.
package treasury

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/access"
	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

const source = "treasury"

// Treasury holds stakes and payment configs.
type Treasury struct {
	runner *state.Runner
	roles  RoleChecker
	auth   Authorizer
	ledger Ledger
	quoter FeeQuoter
	self   common.Address
	logger *slog.Logger
}

// Option configures the Treasury.
type Option func(*Treasury)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Treasury) {
		t.logger = logger
	}
}

// New creates a Treasury whose escrow account is self.
func New(runner *state.Runner, roles RoleChecker, auth Authorizer, ledger Ledger, quoter FeeQuoter, self common.Address, opts ...Option) *Treasury {
	t := &Treasury{
		runner: runner,
		roles:  roles,
		auth:   auth,
		ledger: ledger,
		quoter: quoter,
		self:   self,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Address is the escrow account holding stakes.
func (t *Treasury) Address() common.Address {
	return t.self
}

func stakeKey(hash common.Hash) []byte {
	return state.Key(state.PrefixStake, hash.Bytes())
}

func paymentKey(hash common.Hash) []byte {
	return state.Key(state.PrefixPaymentConfig, hash.Bytes())
}

// PaymentConfig returns hash's payment config, zero-valued when unset.
func (t *Treasury) PaymentConfig(ctx context.Context, hash common.Hash) (PaymentConfig, error) {
	var cfg PaymentConfig
	err := t.runner.View(ctx, func(ctx context.Context) error {
		_, err := state.GetJSON(ctx, paymentKey(hash), &cfg)
		return err
	})
	if err != nil {
		return PaymentConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read payment config")
	}
	return cfg, nil
}

// Stake returns the stake of hash and whether one exists.
func (t *Treasury) Stake(ctx context.Context, hash common.Hash) (Stake, bool, error) {
	var (
		s     Stake
		found bool
	)
	err := t.runner.View(ctx, func(ctx context.Context) error {
		var err error
		found, err = state.GetJSON(ctx, stakeKey(hash), &s)
		return err
	})
	if err != nil {
		return Stake{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read stake")
	}
	return s, found, nil
}

// ProtocolFee is the root fee percentage applied to amount. An unpriced
// root charges nothing.
func (t *Treasury) ProtocolFee(ctx context.Context, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return domain.Zero(), nil
	}
	fee, err := t.quoter.FeeForPrice(ctx, domain.Root, amount)
	if dErrors.HasCode(err, dErrors.CodeDistributionLockedOrNotExist) {
		return domain.Zero(), nil
	}
	return fee, err
}

// StakeForDomain pulls price+fee+protocolFee(price+fee) from registrant.
// The price is escrowed against hash, the fee goes to the parent's
// beneficiary and the protocol fee to the root beneficiary. Registrar only.
func (t *Treasury) StakeForDomain(ctx context.Context, caller common.Address, parent, hash common.Hash, registrant common.Address, price, fee *uint256.Int) error {
	return t.runner.Run(ctx, "treasury.stake", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		if price.IsZero() && fee.IsZero() {
			return nil
		}
		q, err := t.quote(ctx, parent, price, fee)
		if err != nil {
			return err
		}
		if err := t.pull(ctx, q.cfg.Token, registrant, t.self, price); err != nil {
			return err
		}
		if err := t.pull(ctx, q.cfg.Token, registrant, q.cfg.Beneficiary, fee); err != nil {
			return err
		}
		if err := t.pull(ctx, q.cfg.Token, registrant, q.sink, q.protocolFee); err != nil {
			return err
		}
		if !price.IsZero() {
			stake := Stake{Token: q.cfg.Token, Amount: price.Dec()}
			if err := state.PutJSON(ctx, stakeKey(hash), stake); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store stake")
			}
		}
		t.logInfo(ctx, "stake deposited",
			"domain", hash.Hex(),
			"staker", registrant.Hex(),
			"amount", price.Dec(),
			"protocol_fee", q.protocolFee.Dec(),
		)
		return t.emit(ctx, EventStakeDeposited, hash, StakeDeposited{
			Parent:      parent,
			Staker:      registrant,
			Token:       q.cfg.Token,
			Amount:      price.Dec(),
			Fee:         fee.Dec(),
			ProtocolFee: q.protocolFee.Dec(),
		})
	})
}

// ProcessDirectPayment pulls price+fee+protocolFee(price+fee) from payer,
// forwards price+fee to the parent's beneficiary and the protocol fee to
// the root beneficiary. Nothing is escrowed. Registrar only.
func (t *Treasury) ProcessDirectPayment(ctx context.Context, caller common.Address, parent, hash common.Hash, payer common.Address, price, fee *uint256.Int) error {
	return t.runner.Run(ctx, "treasury.direct_payment", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		if price.IsZero() && fee.IsZero() {
			return nil
		}
		q, err := t.quote(ctx, parent, price, fee)
		if err != nil {
			return err
		}
		if err := t.pull(ctx, q.cfg.Token, payer, q.cfg.Beneficiary, q.total); err != nil {
			return err
		}
		if err := t.pull(ctx, q.cfg.Token, payer, q.sink, q.protocolFee); err != nil {
			return err
		}
		return t.emit(ctx, EventDirectPaymentProcessed, hash, DirectPaymentProcessed{
			Parent:      parent,
			Payer:       payer,
			Beneficiary: q.cfg.Beneficiary,
			Token:       q.cfg.Token,
			Amount:      q.total.Dec(),
			ProtocolFee: q.protocolFee.Dec(),
		})
	})
}

// UnstakeForDomain refunds hash's stake minus the protocol fee to owner and
// deletes it. A domain without a stake moves nothing. Registrar only.
func (t *Treasury) UnstakeForDomain(ctx context.Context, caller common.Address, hash common.Hash, owner common.Address) error {
	return t.runner.Run(ctx, "treasury.unstake", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		stake, found, err := t.Stake(ctx, hash)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		amount, err := domain.Amount(stake.Amount)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "corrupt stake amount")
		}
		protocolFee, err := t.ProtocolFee(ctx, amount)
		if err != nil {
			return wrapError(err, "failed to price protocol fee")
		}
		refund := new(uint256.Int).Sub(amount, protocolFee)
		if !protocolFee.IsZero() {
			sink, err := t.sink(ctx)
			if err != nil {
				return err
			}
			if err := t.send(ctx, stake.Token, sink, protocolFee); err != nil {
				return err
			}
		}
		if err := t.send(ctx, stake.Token, owner, refund); err != nil {
			return err
		}
		if err := state.Delete(ctx, stakeKey(hash)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete stake")
		}
		t.logInfo(ctx, "stake withdrawn",
			"domain", hash.Hex(),
			"owner", owner.Hex(),
			"refund", refund.Dec(),
		)
		return t.emit(ctx, EventStakeWithdrawn, hash, StakeWithdrawn{
			Owner:       owner,
			Token:       stake.Token,
			Refund:      refund.Dec(),
			ProtocolFee: protocolFee.Dec(),
		})
	})
}

// SetPaymentConfig replaces hash's payment config. Owner, operator or registrar.
func (t *Treasury) SetPaymentConfig(ctx context.Context, caller common.Address, hash common.Hash, cfg PaymentConfig) error {
	if domain.IsZero(cfg.Token) {
		return dErrors.New(dErrors.CodeZeroAddress, "payment token is the zero address")
	}
	if domain.IsZero(cfg.Beneficiary) {
		return dErrors.New(dErrors.CodeZeroAddress, "beneficiary is the zero address")
	}
	return t.runner.Run(ctx, "treasury.set_payment_config", func(ctx context.Context) error {
		if err := t.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		if err := state.PutJSON(ctx, paymentKey(hash), cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store payment config")
		}
		return t.emit(ctx, EventPaymentConfigSet, hash, cfg)
	})
}

// SetBeneficiary changes who receives hash's payments.
func (t *Treasury) SetBeneficiary(ctx context.Context, caller common.Address, hash common.Hash, beneficiary common.Address) error {
	if domain.IsZero(beneficiary) {
		return dErrors.New(dErrors.CodeZeroAddress, "beneficiary is the zero address")
	}
	return t.updateConfig(ctx, "treasury.set_beneficiary", caller, hash, EventBeneficiarySet, beneficiary,
		func(cfg *PaymentConfig) { cfg.Beneficiary = beneficiary })
}

// SetPaymentToken changes the asset hash charges in.
func (t *Treasury) SetPaymentToken(ctx context.Context, caller common.Address, hash common.Hash, token common.Address) error {
	if domain.IsZero(token) {
		return dErrors.New(dErrors.CodeZeroAddress, "payment token is the zero address")
	}
	return t.updateConfig(ctx, "treasury.set_payment_token", caller, hash, EventPaymentTokenSet, token,
		func(cfg *PaymentConfig) { cfg.Token = token })
}

func (t *Treasury) updateConfig(ctx context.Context, op string, caller common.Address, hash common.Hash,
	typ events.Type, addr common.Address, mutate func(*PaymentConfig)) error {
	return t.runner.Run(ctx, op, func(ctx context.Context) error {
		if err := t.auth.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		cfg, err := t.PaymentConfig(ctx, hash)
		if err != nil {
			return err
		}
		mutate(&cfg)
		if err := state.PutJSON(ctx, paymentKey(hash), cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store payment config")
		}
		return t.emit(ctx, typ, hash, AddressSet{Address: addr})
	})
}

type quote struct {
	cfg         PaymentConfig
	sink        common.Address
	total       *uint256.Int
	protocolFee *uint256.Int
}

func (t *Treasury) quote(ctx context.Context, parent common.Hash, price, fee *uint256.Int) (quote, error) {
	cfg, err := t.PaymentConfig(ctx, parent)
	if err != nil {
		return quote{}, err
	}
	if domain.IsZero(cfg.Token) || domain.IsZero(cfg.Beneficiary) {
		return quote{}, dErrors.Newf(dErrors.CodeNoBeneficiary, "no beneficiary or payment token set for %s", parent.Hex())
	}
	total, err := domain.Add(price, fee)
	if err != nil {
		return quote{}, err
	}
	protocolFee, err := t.ProtocolFee(ctx, total)
	if err != nil {
		return quote{}, wrapError(err, "failed to price protocol fee")
	}
	q := quote{cfg: cfg, total: total, protocolFee: protocolFee}
	if !protocolFee.IsZero() {
		if q.sink, err = t.sink(ctx); err != nil {
			return quote{}, err
		}
	}
	return q, nil
}

func (t *Treasury) sink(ctx context.Context) (common.Address, error) {
	root, err := t.PaymentConfig(ctx, domain.Root)
	if err != nil {
		return common.Address{}, err
	}
	if domain.IsZero(root.Beneficiary) {
		return common.Address{}, dErrors.New(dErrors.CodeNoBeneficiary, "no protocol fee beneficiary set")
	}
	return root.Beneficiary, nil
}

func (t *Treasury) pull(ctx context.Context, token, from, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	return wrapError(t.ledger.TransferFrom(ctx, t.self, token, from, to, amount), "failed to collect payment")
}

func (t *Treasury) send(ctx context.Context, token, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	return wrapError(t.ledger.Transfer(ctx, t.self, token, to, amount), "failed to pay out")
}

func (t *Treasury) emit(ctx context.Context, typ events.Type, hash common.Hash, payload any) error {
	evt, err := events.New(ctx, source, typ, hash, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}

func (t *Treasury) logInfo(ctx context.Context, msg string, args ...any) {
	if t.logger == nil {
		return
	}
	t.logger.InfoContext(ctx, msg, args...)
}
