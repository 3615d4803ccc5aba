package treasury

import (
	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
)

const (
	EventStakeDeposited         events.Type = "StakeDeposited"
	EventStakeWithdrawn         events.Type = "StakeWithdrawn"
	EventDirectPaymentProcessed events.Type = "DirectPaymentProcessed"
	EventPaymentConfigSet       events.Type = "PaymentConfigSet"
	EventBeneficiarySet         events.Type = "BeneficiarySet"
	EventPaymentTokenSet        events.Type = "PaymentTokenSet"
)

// PaymentConfig says which asset a domain charges in and who receives it.
type PaymentConfig struct {
	Token       common.Address `json:"token"`
	Beneficiary common.Address `json:"beneficiary"`
}

// Stake is the escrowed registration price of a domain.
type Stake struct {
	Token  common.Address `json:"token"`
	Amount string         `json:"amount"`
}

// StakeDeposited is the payload of EventStakeDeposited.
type StakeDeposited struct {
	Parent      common.Hash    `json:"parent"`
	Staker      common.Address `json:"staker"`
	Token       common.Address `json:"token"`
	Amount      string         `json:"amount"`
	Fee         string         `json:"fee"`
	ProtocolFee string         `json:"protocolFee"`
}

// StakeWithdrawn is the payload of EventStakeWithdrawn.
type StakeWithdrawn struct {
	Owner       common.Address `json:"owner"`
	Token       common.Address `json:"token"`
	Refund      string         `json:"refund"`
	ProtocolFee string         `json:"protocolFee"`
}

// DirectPaymentProcessed is the payload of EventDirectPaymentProcessed.
type DirectPaymentProcessed struct {
	Parent      common.Hash    `json:"parent"`
	Payer       common.Address `json:"payer"`
	Beneficiary common.Address `json:"beneficiary"`
	Token       common.Address `json:"token"`
	Amount      string         `json:"amount"`
	ProtocolFee string         `json:"protocolFee"`
}

// AddressSet is the payload of the single-address setter events.
type AddressSet struct {
	Address common.Address `json:"address"`
}
