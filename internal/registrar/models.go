package registrar

import (
	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
	"zns/internal/treasury"
	dErrors "zns/pkg/domain-errors"
)

// PaymentType says how children of a domain pay.
type PaymentType uint8

const (
	// PaymentDirect forwards the price to the parent's beneficiary.
	PaymentDirect PaymentType = iota
	// PaymentStake escrows the price until the child is revoked.
	PaymentStake
)

func (p PaymentType) String() string {
	switch p {
	case PaymentDirect:
		return "DIRECT"
	case PaymentStake:
		return "STAKE"
	}
	return "UNKNOWN"
}

func (p PaymentType) validate() error {
	if p > PaymentStake {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown payment type %d", p)
	}
	return nil
}

// AccessType says who may register children of a domain.
type AccessType uint8

const (
	// AccessLocked admits only the owner and operators.
	AccessLocked AccessType = iota
	// AccessOpen admits anyone.
	AccessOpen
	// AccessMintlist admits mintlisted accounts, the owner and operators.
	AccessMintlist
)

func (a AccessType) String() string {
	switch a {
	case AccessLocked:
		return "LOCKED"
	case AccessOpen:
		return "OPEN"
	case AccessMintlist:
		return "MINTLIST"
	}
	return "UNKNOWN"
}

func (a AccessType) validate() error {
	if a > AccessMintlist {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown access type %d", a)
	}
	return nil
}

// DistributionConfig governs how children of a domain are sold.
// PriceConfig is the pricer's encoded config; it is stored by the pricer,
// not alongside the rest of the fields.
type DistributionConfig struct {
	Pricer      common.Address `json:"pricer"`
	PriceConfig []byte         `json:"-"`
	PaymentType PaymentType    `json:"paymentType"`
	AccessType  AccessType     `json:"accessType"`
}

// RootRegistration describes a new top-level domain.
type RootRegistration struct {
	Label           string
	TokenOwner      common.Address
	TokenURI        string
	ResolverAddress common.Address
	DistrConfig     *DistributionConfig
	PaymentConfig   *treasury.PaymentConfig
}

// SubdomainRegistration describes a new child domain. In a bulk request a
// zero Parent chains to the previous item's domain.
type SubdomainRegistration struct {
	Parent          common.Hash
	Label           string
	TokenOwner      common.Address
	TokenURI        string
	ResolverAddress common.Address
	DistrConfig     *DistributionConfig
	PaymentConfig   *treasury.PaymentConfig
}

const (
	EventDomainRegistered      events.Type = "DomainRegistered"
	EventDomainRevoked         events.Type = "DomainRevoked"
	EventDomainReclaimed       events.Type = "DomainReclaimed"
	EventDomainTokenReassigned events.Type = "DomainTokenReassigned"
	EventDistributionConfigSet events.Type = "DistributionConfigSet"
	EventPricerDataSet         events.Type = "PricerDataSet"
	EventPaymentTypeSet        events.Type = "PaymentTypeSet"
	EventAccessTypeSet         events.Type = "AccessTypeSet"
	EventMintlistUpdated       events.Type = "MintlistUpdated"
	EventMintlistCleared       events.Type = "MintlistCleared"
	EventRegistrationPaused    events.Type = "RegistrationPaused"
	EventRegistrationUnpaused  events.Type = "RegistrationUnpaused"
)

// DomainRegistered is the payload of EventDomainRegistered.
type DomainRegistered struct {
	Parent     common.Hash    `json:"parent"`
	Label      string         `json:"label"`
	Registrant common.Address `json:"registrant"`
	TokenOwner common.Address `json:"tokenOwner"`
	TokenURI   string         `json:"tokenURI,omitempty"`
	Resolver   common.Address `json:"resolver"`
	Price      string         `json:"price"`
	Fee        string         `json:"fee"`
}

// OwnerChanged is the payload of revoke, reclaim and token reassignment events.
type OwnerChanged struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
}

// DistributionConfigSet is the payload of EventDistributionConfigSet.
type DistributionConfigSet struct {
	Pricer      common.Address `json:"pricer"`
	PaymentType string         `json:"paymentType"`
	AccessType  string         `json:"accessType"`
}

// PricerDataSet is the payload of EventPricerDataSet.
type PricerDataSet struct {
	Pricer      common.Address `json:"pricer"`
	PriceConfig []byte         `json:"priceConfig,omitempty"`
}

// TypeSet is the payload of EventPaymentTypeSet and EventAccessTypeSet.
type TypeSet struct {
	Value string `json:"value"`
}

// MintlistUpdated is the payload of EventMintlistUpdated.
type MintlistUpdated struct {
	Generation uint64           `json:"generation"`
	Candidates []common.Address `json:"candidates"`
	Allowed    []bool           `json:"allowed"`
}

// MintlistCleared is the payload of EventMintlistCleared.
type MintlistCleared struct {
	Generation uint64 `json:"generation"`
}

// PauseChanged is the payload of the pause events.
type PauseChanged struct {
	By common.Address `json:"by"`
}
