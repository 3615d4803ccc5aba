// Package ledger keeps balances and allowances of the payment assets.
//
// Every asset is identified by an address and behaves like a fungible token:
// holders transfer their own funds, and spenders move funds they have been
// approved for. Transfer events are the observable record of every movement.
package ledger

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

const source = "ledger"

const (
	EventAssetRegistered events.Type = "AssetRegistered"
	EventTransfer        events.Type = "Transfer"
	EventApproval        events.Type = "Approval"
)

// Asset describes a registered payment asset.
type Asset struct {
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Issuer   common.Address `json:"issuer"`
	Supply   string         `json:"supply"`
}

// Transfer is the payload of EventTransfer. A zero From is an issuance.
type Transfer struct {
	Token  common.Address `json:"token"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount string         `json:"amount"`
}

// Approval is the payload of EventApproval.
type Approval struct {
	Token   common.Address `json:"token"`
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

// Ledger reads and writes asset balances.
type Ledger struct {
	runner *state.Runner
	logger *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a Ledger.
func New(runner *state.Runner, opts ...Option) *Ledger {
	l := &Ledger{runner: runner}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func assetKey(token common.Address) []byte {
	return state.Key(state.PrefixAsset, token.Bytes())
}

func balanceKey(token, holder common.Address) []byte {
	return state.Key(state.PrefixBalance, token.Bytes(), holder.Bytes())
}

func allowanceKey(token, owner, spender common.Address) []byte {
	return state.Key(state.PrefixAllowance, token.Bytes(), owner.Bytes(), spender.Bytes())
}

// RegisterToken creates an asset. Only issuer may mint it.
func (l *Ledger) RegisterToken(ctx context.Context, token common.Address, symbol string, decimals uint8, issuer common.Address) error {
	if domain.IsZero(token) || domain.IsZero(issuer) {
		return dErrors.New(dErrors.CodeZeroAddress, "token and issuer are required")
	}
	return l.runner.Run(ctx, "ledger.register_token", func(ctx context.Context) error {
		exists, err := state.Has(ctx, assetKey(token))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read asset")
		}
		if exists {
			return dErrors.Newf(dErrors.CodeConflict, "asset %s already registered", token.Hex())
		}
		asset := Asset{Symbol: symbol, Decimals: decimals, Issuer: issuer, Supply: "0"}
		if err := state.PutJSON(ctx, assetKey(token), asset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store asset")
		}
		return l.emit(ctx, EventAssetRegistered, asset)
	})
}

// Asset returns the asset registered at token.
func (l *Ledger) Asset(ctx context.Context, token common.Address) (Asset, error) {
	var (
		asset Asset
		found bool
	)
	err := l.runner.View(ctx, func(ctx context.Context) error {
		var err error
		found, err = state.GetJSON(ctx, assetKey(token), &asset)
		return err
	})
	if err != nil {
		return Asset{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read asset")
	}
	if !found {
		return Asset{}, dErrors.Newf(dErrors.CodeNotFound, "asset %s is not registered", token.Hex())
	}
	return asset, nil
}

// TotalSupply returns the issued amount of token.
func (l *Ledger) TotalSupply(ctx context.Context, token common.Address) (*uint256.Int, error) {
	asset, err := l.Asset(ctx, token)
	if err != nil {
		return nil, err
	}
	return domain.Amount(asset.Supply)
}

// Mint issues amount of token to to. Issuer only.
func (l *Ledger) Mint(ctx context.Context, caller, token, to common.Address, amount *uint256.Int) error {
	return l.runner.Run(ctx, "ledger.mint", func(ctx context.Context) error {
		asset, err := l.Asset(ctx, token)
		if err != nil {
			return err
		}
		if asset.Issuer != caller {
			return dErrors.Newf(dErrors.CodeNotAuthorized, "%s may not mint %s", caller.Hex(), asset.Symbol)
		}
		if domain.IsZero(to) {
			return dErrors.New(dErrors.CodeZeroAddress, "recipient is the zero address")
		}
		supply, err := domain.Amount(asset.Supply)
		if err != nil {
			return err
		}
		if supply, err = domain.Add(supply, amount); err != nil {
			return err
		}
		asset.Supply = supply.Dec()
		if err := state.PutJSON(ctx, assetKey(token), asset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store asset")
		}
		if err := l.credit(ctx, token, to, amount); err != nil {
			return err
		}
		return l.emit(ctx, EventTransfer, Transfer{Token: token, To: to, Amount: amount.Dec()})
	})
}

// BalanceOf returns holder's balance of token.
func (l *Ledger) BalanceOf(ctx context.Context, token, holder common.Address) (*uint256.Int, error) {
	var out *uint256.Int
	err := l.runner.View(ctx, func(ctx context.Context) error {
		var err error
		out, err = l.readAmount(ctx, balanceKey(token, holder))
		return err
	})
	return out, err
}

// Allowance returns how much spender may move out of owner's balance.
func (l *Ledger) Allowance(ctx context.Context, token, owner, spender common.Address) (*uint256.Int, error) {
	var out *uint256.Int
	err := l.runner.View(ctx, func(ctx context.Context) error {
		var err error
		out, err = l.readAmount(ctx, allowanceKey(token, owner, spender))
		return err
	})
	return out, err
}

// Approve sets spender's allowance over caller's balance.
func (l *Ledger) Approve(ctx context.Context, caller, token, spender common.Address, amount *uint256.Int) error {
	if domain.IsZero(spender) {
		return dErrors.New(dErrors.CodeZeroAddress, "spender is the zero address")
	}
	return l.runner.Run(ctx, "ledger.approve", func(ctx context.Context) error {
		if _, err := l.Asset(ctx, token); err != nil {
			return err
		}
		if err := l.writeAmount(ctx, allowanceKey(token, caller, spender), amount); err != nil {
			return err
		}
		return l.emit(ctx, EventApproval, Approval{Token: token, Owner: caller, Spender: spender, Amount: amount.Dec()})
	})
}

// Transfer moves amount of caller's token to to.
func (l *Ledger) Transfer(ctx context.Context, caller, token, to common.Address, amount *uint256.Int) error {
	return l.runner.Run(ctx, "ledger.transfer", func(ctx context.Context) error {
		return l.move(ctx, token, caller, to, amount)
	})
}

// TransferFrom moves amount from from to to, spending caller's allowance.
func (l *Ledger) TransferFrom(ctx context.Context, caller, token, from, to common.Address, amount *uint256.Int) error {
	return l.runner.Run(ctx, "ledger.transfer_from", func(ctx context.Context) error {
		key := allowanceKey(token, from, caller)
		allowance, err := l.readAmount(ctx, key)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return dErrors.Newf(dErrors.CodeInsufficientAllowance,
				"allowance %s of %s is below %s", allowance.Dec(), caller.Hex(), amount.Dec())
		}
		if err := l.writeAmount(ctx, key, new(uint256.Int).Sub(allowance, amount)); err != nil {
			return err
		}
		return l.move(ctx, token, from, to, amount)
	})
}

func (l *Ledger) move(ctx context.Context, token, from, to common.Address, amount *uint256.Int) error {
	if domain.IsZero(to) {
		return dErrors.New(dErrors.CodeZeroAddress, "recipient is the zero address")
	}
	if _, err := l.Asset(ctx, token); err != nil {
		return err
	}
	key := balanceKey(token, from)
	balance, err := l.readAmount(ctx, key)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return dErrors.Newf(dErrors.CodeInsufficientBalance,
			"balance %s of %s is below %s", balance.Dec(), from.Hex(), amount.Dec())
	}
	if err := l.writeAmount(ctx, key, new(uint256.Int).Sub(balance, amount)); err != nil {
		return err
	}
	if err := l.credit(ctx, token, to, amount); err != nil {
		return err
	}
	if l.logger != nil {
		l.logger.DebugContext(ctx, "transfer",
			"token", token.Hex(),
			"from", from.Hex(),
			"to", to.Hex(),
			"amount", amount.Dec(),
		)
	}
	return l.emit(ctx, EventTransfer, Transfer{Token: token, From: from, To: to, Amount: amount.Dec()})
}

func (l *Ledger) credit(ctx context.Context, token, to common.Address, amount *uint256.Int) error {
	key := balanceKey(token, to)
	balance, err := l.readAmount(ctx, key)
	if err != nil {
		return err
	}
	sum, err := domain.Add(balance, amount)
	if err != nil {
		return err
	}
	return l.writeAmount(ctx, key, sum)
}

func (l *Ledger) readAmount(ctx context.Context, key []byte) (*uint256.Int, error) {
	raw, err := state.Get(ctx, key)
	if isNotFound(err) {
		return domain.Zero(), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read amount")
	}
	return new(uint256.Int).SetBytes(raw), nil
}

func (l *Ledger) writeAmount(ctx context.Context, key []byte, v *uint256.Int) error {
	var err error
	if v.IsZero() {
		err = state.Delete(ctx, key)
	} else {
		b := v.Bytes32()
		err = state.Put(ctx, key, b[:])
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store amount")
	}
	return nil
}

func (l *Ledger) emit(ctx context.Context, typ events.Type, payload any) error {
	evt, err := events.New(ctx, source, typ, domain.Root, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}
