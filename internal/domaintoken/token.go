// Package domaintoken is the transferable ownership token of each domain.
//
// A token id is the domain hash read as an integer. The registrar mints and
// burns tokens; holders transfer them like any non-fungible token. Token and
// record ownership may diverge after a transfer until the new holder
// reclaims the domain.
package domaintoken

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/access"
	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

const source = "domaintoken"

// RoleChecker answers role membership questions.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, account common.Address) error
}

// Receiver is notified after a token lands on an account that registered
// one. It runs once the transfer has committed, outside the unit of work.
type Receiver interface {
	OnTokenReceived(ctx context.Context, operator, from common.Address, tokenID *uint256.Int) error
}

// Token stores token ownership, approvals and metadata.
type Token struct {
	runner *state.Runner
	roles  RoleChecker
	logger *slog.Logger

	mu        sync.RWMutex
	receivers map[common.Address]Receiver
}

// Option configures the Token.
type Option func(*Token)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Token) {
		t.logger = logger
	}
}

// New creates a Token.
func New(runner *state.Runner, roles RoleChecker, opts ...Option) *Token {
	t := &Token{
		runner:    runner,
		roles:     roles,
		receivers: make(map[common.Address]Receiver),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterReceiver attaches a receiver to account. Pass nil to detach.
func (t *Token) RegisterReceiver(account common.Address, r Receiver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r == nil {
		delete(t.receivers, account)
		return
	}
	t.receivers[account] = r
}

func idBytes(id *uint256.Int) []byte {
	b := id.Bytes32()
	return b[:]
}

func ownerKey(id *uint256.Int) []byte {
	return state.Key(state.PrefixTokenOwner, idBytes(id))
}

func approvalKey(id *uint256.Int) []byte {
	return state.Key(state.PrefixTokenApproval, idBytes(id))
}

func operatorKey(owner, operator common.Address) []byte {
	return state.Key(state.PrefixTokenOperator, owner.Bytes(), operator.Bytes())
}

func balanceKey(owner common.Address) []byte {
	return state.Key(state.PrefixTokenBalance, owner.Bytes())
}

func uriKey(id *uint256.Int) []byte {
	return state.Key(state.PrefixTokenURI, idBytes(id))
}

var (
	baseURIKey = state.Key(state.PrefixTokenMeta, []byte("base_uri"))
	supplyKey  = state.Key(state.PrefixTokenMeta, []byte("total_supply"))
)

// Mint creates tokenID for to. Registrar only.
func (t *Token) Mint(ctx context.Context, caller, to common.Address, tokenID *uint256.Int, tokenURI string) error {
	return t.runner.Run(ctx, "domaintoken.mint", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		if domain.IsZero(to) {
			return dErrors.New(dErrors.CodeZeroAddress, "recipient is the zero address")
		}
		exists, err := state.Has(ctx, ownerKey(tokenID))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token")
		}
		if exists {
			return dErrors.Newf(dErrors.CodeConflict, "token %s already minted", tokenID.Hex())
		}
		if err := state.Put(ctx, ownerKey(tokenID), to.Bytes()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store token owner")
		}
		if err := t.addCounter(ctx, balanceKey(to), 1); err != nil {
			return err
		}
		if err := t.addCounter(ctx, supplyKey, 1); err != nil {
			return err
		}
		if tokenURI != "" {
			if err := state.Put(ctx, uriKey(tokenID), []byte(tokenURI)); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store token uri")
			}
		}
		if err := t.emit(ctx, EventTransfer, domain.HashFromTokenID(tokenID), TransferPayload{To: to, TokenID: tokenID.Dec()}); err != nil {
			return err
		}
		return t.notify(ctx, caller, common.Address{}, to, tokenID)
	})
}

// Burn destroys tokenID. Registrar only.
func (t *Token) Burn(ctx context.Context, caller common.Address, tokenID *uint256.Int) error {
	return t.runner.Run(ctx, "domaintoken.burn", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		owner, err := t.OwnerOf(ctx, tokenID)
		if err != nil {
			return err
		}
		for _, key := range [][]byte{ownerKey(tokenID), approvalKey(tokenID), uriKey(tokenID)} {
			if err := state.Delete(ctx, key); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete token")
			}
		}
		if err := t.addCounter(ctx, balanceKey(owner), -1); err != nil {
			return err
		}
		if err := t.addCounter(ctx, supplyKey, -1); err != nil {
			return err
		}
		return t.emit(ctx, EventTransfer, domain.HashFromTokenID(tokenID), TransferPayload{From: owner, TokenID: tokenID.Dec()})
	})
}

// OwnerOf returns the holder of tokenID or CodeNotFound.
func (t *Token) OwnerOf(ctx context.Context, tokenID *uint256.Int) (common.Address, error) {
	var owner common.Address
	err := t.runner.View(ctx, func(ctx context.Context) error {
		raw, err := state.Get(ctx, ownerKey(tokenID))
		if err != nil {
			return err
		}
		owner = common.BytesToAddress(raw)
		return nil
	})
	if isNotFound(err) {
		return common.Address{}, dErrors.Newf(dErrors.CodeNotFound, "token %s does not exist", tokenID.Hex())
	}
	if err != nil {
		return common.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token owner")
	}
	return owner, nil
}

// Exists reports whether tokenID has been minted and not burned.
func (t *Token) Exists(ctx context.Context, tokenID *uint256.Int) (bool, error) {
	_, err := t.OwnerOf(ctx, tokenID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return false, nil
	}
	return err == nil, err
}

// BalanceOf returns how many tokens owner holds.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	return t.readCounter(ctx, balanceKey(owner))
}

// TotalSupply returns the number of live tokens.
func (t *Token) TotalSupply(ctx context.Context) (uint64, error) {
	return t.readCounter(ctx, supplyKey)
}

// Approve lets to transfer tokenID once. Holder or holder's operator only.
func (t *Token) Approve(ctx context.Context, caller, to common.Address, tokenID *uint256.Int) error {
	return t.runner.Run(ctx, "domaintoken.approve", func(ctx context.Context) error {
		owner, err := t.OwnerOf(ctx, tokenID)
		if err != nil {
			return err
		}
		if owner == to {
			return dErrors.New(dErrors.CodeInvalidInput, "approval to current owner")
		}
		if caller != owner {
			ok, err := t.IsApprovedForAll(ctx, owner, caller)
			if err != nil {
				return err
			}
			if !ok {
				return dErrors.Newf(dErrors.CodeNotAuthorized, "%s may not approve token %s", caller.Hex(), tokenID.Hex())
			}
		}
		if err := state.Put(ctx, approvalKey(tokenID), to.Bytes()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store approval")
		}
		return t.emit(ctx, EventApproval, domain.HashFromTokenID(tokenID), ApprovalPayload{Owner: owner, Approved: to, TokenID: tokenID.Dec()})
	})
}

// GetApproved returns the single-token approval of tokenID.
func (t *Token) GetApproved(ctx context.Context, tokenID *uint256.Int) (common.Address, error) {
	var approved common.Address
	err := t.runner.View(ctx, func(ctx context.Context) error {
		raw, err := state.Get(ctx, approvalKey(tokenID))
		if err != nil {
			return err
		}
		approved = common.BytesToAddress(raw)
		return nil
	})
	if err != nil && !isNotFound(err) {
		return common.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read approval")
	}
	return approved, nil
}

// SetApprovalForAll lets operator transfer every token caller holds.
func (t *Token) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	if caller == operator {
		return dErrors.New(dErrors.CodeInvalidInput, "approve to caller")
	}
	return t.runner.Run(ctx, "domaintoken.set_approval_for_all", func(ctx context.Context) error {
		var err error
		if approved {
			err = state.Put(ctx, operatorKey(caller, operator), []byte{1})
		} else {
			err = state.Delete(ctx, operatorKey(caller, operator))
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store operator approval")
		}
		return t.emit(ctx, EventApprovalForAll, domain.Root, ApprovalForAllPayload{Owner: caller, Operator: operator, Approved: approved})
	})
}

// IsApprovedForAll reports whether operator may move all of owner's tokens.
func (t *Token) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var ok bool
	err := t.runner.View(ctx, func(ctx context.Context) error {
		var err error
		ok, err = state.Has(ctx, operatorKey(owner, operator))
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read operator approval")
	}
	return ok, nil
}

// TransferFrom moves tokenID from from to to. caller must be the holder,
// approved for the token, or an operator of the holder.
func (t *Token) TransferFrom(ctx context.Context, caller, from, to common.Address, tokenID *uint256.Int) error {
	return t.runner.Run(ctx, "domaintoken.transfer_from", func(ctx context.Context) error {
		owner, err := t.OwnerOf(ctx, tokenID)
		if err != nil {
			return err
		}
		if owner != from {
			return dErrors.Newf(dErrors.CodeNotTokenOwner, "%s does not hold token %s", from.Hex(), tokenID.Hex())
		}
		if err := t.checkSpender(ctx, caller, owner, tokenID); err != nil {
			return err
		}
		return t.transfer(ctx, caller, owner, to, tokenID)
	})
}

// TransferOverride moves tokenID to to regardless of approvals. Registrar only.
func (t *Token) TransferOverride(ctx context.Context, caller, to common.Address, tokenID *uint256.Int) error {
	return t.runner.Run(ctx, "domaintoken.transfer_override", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
			return err
		}
		owner, err := t.OwnerOf(ctx, tokenID)
		if err != nil {
			return err
		}
		return t.transfer(ctx, caller, owner, to, tokenID)
	})
}

// TokenURI returns the base URI joined with the token's own URI. A token
// without its own URI falls back to the base URI followed by the token id.
func (t *Token) TokenURI(ctx context.Context, tokenID *uint256.Int) (string, error) {
	var uri string
	err := t.runner.View(ctx, func(ctx context.Context) error {
		if _, err := t.OwnerOf(ctx, tokenID); err != nil {
			return err
		}
		base, err := t.readString(ctx, baseURIKey)
		if err != nil {
			return err
		}
		own, err := t.readString(ctx, uriKey(tokenID))
		if err != nil {
			return err
		}
		switch {
		case own != "":
			uri = base + own
		case base != "":
			uri = base + tokenID.Dec()
		}
		return nil
	})
	return uri, err
}

// SetBaseURI sets the prefix of every token URI. Admin only.
func (t *Token) SetBaseURI(ctx context.Context, caller common.Address, baseURI string) error {
	return t.runner.Run(ctx, "domaintoken.set_base_uri", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if err := state.Put(ctx, baseURIKey, []byte(baseURI)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store base uri")
		}
		return t.emit(ctx, EventBaseURISet, domain.Root, URIPayload{URI: baseURI})
	})
}

// SetTokenURI replaces the URI of one token. Admin only.
func (t *Token) SetTokenURI(ctx context.Context, caller common.Address, tokenID *uint256.Int, tokenURI string) error {
	return t.runner.Run(ctx, "domaintoken.set_token_uri", func(ctx context.Context) error {
		if err := t.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if _, err := t.OwnerOf(ctx, tokenID); err != nil {
			return err
		}
		if err := state.Put(ctx, uriKey(tokenID), []byte(tokenURI)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store token uri")
		}
		return t.emit(ctx, EventTokenURISet, domain.HashFromTokenID(tokenID), URIPayload{URI: tokenURI, TokenID: tokenID.Dec()})
	})
}

func (t *Token) checkSpender(ctx context.Context, caller, owner common.Address, tokenID *uint256.Int) error {
	if caller == owner {
		return nil
	}
	approved, err := t.GetApproved(ctx, tokenID)
	if err != nil {
		return err
	}
	if approved == caller {
		return nil
	}
	ok, err := t.IsApprovedForAll(ctx, owner, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeNotAuthorized, "%s may not transfer token %s", caller.Hex(), tokenID.Hex())
	}
	return nil
}

func (t *Token) transfer(ctx context.Context, operator, from, to common.Address, tokenID *uint256.Int) error {
	if domain.IsZero(to) {
		return dErrors.New(dErrors.CodeZeroAddress, "recipient is the zero address")
	}
	if err := state.Delete(ctx, approvalKey(tokenID)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear approval")
	}
	if err := state.Put(ctx, ownerKey(tokenID), to.Bytes()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store token owner")
	}
	if from != to {
		if err := t.addCounter(ctx, balanceKey(from), -1); err != nil {
			return err
		}
		if err := t.addCounter(ctx, balanceKey(to), 1); err != nil {
			return err
		}
	}
	if err := t.emit(ctx, EventTransfer, domain.HashFromTokenID(tokenID), TransferPayload{From: from, To: to, TokenID: tokenID.Dec()}); err != nil {
		return err
	}
	return t.notify(ctx, operator, from, to, tokenID)
}

// notify queues the receiver callback of to, if any, for after commit.
func (t *Token) notify(ctx context.Context, operator, from, to common.Address, tokenID *uint256.Int) error {
	t.mu.RLock()
	r, ok := t.receivers[to]
	t.mu.RUnlock()
	if !ok {
		return nil
	}
	id := tokenID.Clone()
	return state.AfterCommit(ctx, func(ctx context.Context) {
		if err := r.OnTokenReceived(ctx, operator, from, id); err != nil && t.logger != nil {
			t.logger.WarnContext(ctx, "token receiver failed",
				"receiver", to.Hex(),
				"token_id", id.Hex(),
				"error", err,
			)
		}
	})
}

func (t *Token) readCounter(ctx context.Context, key []byte) (uint64, error) {
	var n uint64
	err := t.runner.View(ctx, func(ctx context.Context) error {
		raw, err := state.Get(ctx, key)
		if err != nil {
			return err
		}
		n, err = strconv.ParseUint(string(raw), 10, 64)
		return err
	})
	if err != nil && !isNotFound(err) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read counter")
	}
	return n, nil
}

func (t *Token) addCounter(ctx context.Context, key []byte, delta int) error {
	n, err := t.readCounter(ctx, key)
	if err != nil {
		return err
	}
	switch {
	case delta < 0 && n == 0:
		return dErrors.New(dErrors.CodeInvariantViolation, "token counter underflow")
	case delta < 0:
		n--
	default:
		n++
	}
	if n == 0 {
		err = state.Delete(ctx, key)
	} else {
		err = state.Put(ctx, key, []byte(strconv.FormatUint(n, 10)))
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store counter")
	}
	return nil
}

func (t *Token) readString(ctx context.Context, key []byte) (string, error) {
	raw, err := state.Get(ctx, key)
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token metadata")
	}
	return string(raw), nil
}

func (t *Token) emit(ctx context.Context, typ events.Type, hash common.Hash, payload any) error {
	evt, err := events.New(ctx, source, typ, hash, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}
