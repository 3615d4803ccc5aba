// Package pricing computes what a child label costs under its parent.
//
// A Policy keeps one price configuration per parent domain and quotes
// (price, fee) for candidate labels. Two policies ship: CurvePricer, whose
// price falls with label length, and FixedPricer, a flat price. Domains
// choose a policy by address in their distribution config.
package pricing

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"zns/internal/events"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

// Policy quotes prices for children of configured domains.
type Policy interface {
	// Address identifies the policy in distribution configs.
	Address() common.Address
	// PriceAndFee quotes a label under parent. With skipValidation the
	// label character class is not checked.
	PriceAndFee(ctx context.Context, parent common.Hash, label string, skipValidation bool) (price, fee *uint256.Int, err error)
	// FeeForPrice applies parent's fee percentage to price.
	FeeForPrice(ctx context.Context, parent common.Hash, price *uint256.Int) (*uint256.Int, error)
	// ApplyConfig replaces parent's config with an encoded one.
	ApplyConfig(ctx context.Context, caller common.Address, parent common.Hash, raw []byte) error
	// ValidateConfig checks an encoded config without storing it.
	ValidateConfig(raw []byte) error
	// EncodedConfig returns parent's config in its encoded form.
	EncodedConfig(ctx context.Context, parent common.Hash) ([]byte, bool, error)
}

// Authorizer decides who may configure a domain's pricing.
type Authorizer interface {
	AuthorizeDomain(ctx context.Context, hash common.Hash, caller common.Address) error
}

const source = "pricing"

// Event types shared by both policies.
const (
	EventPriceConfigSet         events.Type = "PriceConfigSet"
	EventMaxPriceSet            events.Type = "MaxPriceSet"
	EventMinPriceSet            events.Type = "MinPriceSet"
	EventBaseLengthSet          events.Type = "BaseLengthSet"
	EventMaxLengthSet           events.Type = "MaxLengthSet"
	EventPrecisionMultiplierSet events.Type = "PrecisionMultiplierSet"
	EventFeePercentageSet       events.Type = "FeePercentageSet"
	EventPriceSet               events.Type = "PriceSet"
)

// CurveConfigSet is the payload of EventPriceConfigSet for curve configs.
type CurveConfigSet struct {
	Pricer              common.Address `json:"pricer"`
	MaxPrice            string         `json:"maxPrice"`
	MinPrice            string         `json:"minPrice"`
	MaxLength           uint64         `json:"maxLength"`
	BaseLength          uint64         `json:"baseLength"`
	PrecisionMultiplier string         `json:"precisionMultiplier"`
	FeePercentage       uint64         `json:"feePercentage"`
}

// FixedConfigSet is the payload of EventPriceConfigSet for fixed configs.
type FixedConfigSet struct {
	Pricer        common.Address `json:"pricer"`
	Price         string         `json:"price"`
	FeePercentage uint64         `json:"feePercentage"`
}

// ValueSet is the payload of single-field setter events.
type ValueSet struct {
	Pricer common.Address `json:"pricer"`
	Value  string         `json:"value"`
}

// LabelLength is the length the curve prices: the number of characters.
func LabelLength(label string) uint64 {
	return uint64(utf8.RuneCountInString(label))
}

func checkLabel(label string, skipValidation bool) error {
	if skipValidation {
		return nil
	}
	return domain.ValidateLabel(label)
}

func configKey(prefix byte, pricer common.Address, hash common.Hash) []byte {
	return state.Key(prefix, pricer.Bytes(), hash.Bytes())
}

func loadEncoded(ctx context.Context, runner *state.Runner, key []byte) ([]byte, bool, error) {
	var raw []byte
	err := runner.View(ctx, func(ctx context.Context) error {
		var err error
		raw, err = state.Get(ctx, key)
		return err
	})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read price config")
	}
	return raw, true, nil
}

func notConfigured(hash common.Hash) error {
	return dErrors.Newf(dErrors.CodeDistributionLockedOrNotExist, "no price config for %s", hash.Hex())
}

func emit(ctx context.Context, typ events.Type, hash common.Hash, payload any) error {
	evt, err := events.New(ctx, source, typ, hash, payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
	}
	return state.Emit(ctx, evt)
}

// Directory resolves policies by address.
type Directory struct {
	mu       sync.RWMutex
	policies map[common.Address]Policy
}

// NewDirectory creates a directory holding policies.
func NewDirectory(policies ...Policy) *Directory {
	d := &Directory{policies: make(map[common.Address]Policy, len(policies))}
	for _, p := range policies {
		d.Register(p)
	}
	return d
}

// Register adds or replaces a policy.
func (d *Directory) Register(p Policy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.policies[p.Address()] = p
}

// Lookup returns the policy at addr.
func (d *Directory) Lookup(addr common.Address) (Policy, error) {
	if domain.IsZero(addr) {
		return nil, dErrors.New(dErrors.CodeZeroAddress, "pricer is the zero address")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.policies[addr]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown pricer %s", addr.Hex())
	}
	return p, nil
}

var (
	_ Policy = (*CurvePricer)(nil)
	_ Policy = (*FixedPricer)(nil)
)
