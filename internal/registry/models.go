package registry

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
	"zns/pkg/platform/sentinel"
)

const (
	EventDomainRecordSet     events.Type = "DomainRecordSet"
	EventDomainOwnerSet      events.Type = "DomainOwnerSet"
	EventDomainResolverSet   events.Type = "DomainResolverSet"
	EventDomainRecordDeleted events.Type = "DomainRecordDeleted"
	EventOperatorSet         events.Type = "OperatorSet"
	EventResolverAdded       events.Type = "ResolverAdded"
	EventResolverDeleted     events.Type = "ResolverDeleted"
)

type DomainRecordSet struct {
	Owner    common.Address `json:"owner"`
	Resolver common.Address `json:"resolver"`
}

type DomainOwnerSet struct {
	Owner common.Address `json:"owner"`
}

type DomainResolverSet struct {
	Resolver common.Address `json:"resolver"`
}

type DomainRecordDeleted struct {
	Sender common.Address `json:"sender"`
}

type OperatorSet struct {
	Owner    common.Address `json:"owner"`
	Operator common.Address `json:"operator"`
	Allowed  bool           `json:"allowed"`
}

type ResolverTypeChanged struct {
	Type     string         `json:"resolverType"`
	Resolver common.Address `json:"resolver"`
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
