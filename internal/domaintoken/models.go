package domaintoken

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/events"
	"zns/pkg/platform/sentinel"
)

const (
	EventTransfer       events.Type = "DomainTokenTransfer"
	EventApproval       events.Type = "DomainTokenApproval"
	EventApprovalForAll events.Type = "DomainTokenApprovalForAll"
	EventBaseURISet     events.Type = "BaseURISet"
	EventTokenURISet    events.Type = "TokenURISet"
)

// TransferPayload describes a mint (zero From), burn (zero To) or transfer.
type TransferPayload struct {
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	TokenID string         `json:"tokenId"`
}

type ApprovalPayload struct {
	Owner    common.Address `json:"owner"`
	Approved common.Address `json:"approved"`
	TokenID  string         `json:"tokenId"`
}

type ApprovalForAllPayload struct {
	Owner    common.Address `json:"owner"`
	Operator common.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

type URIPayload struct {
	URI     string `json:"uri"`
	TokenID string `json:"tokenId,omitempty"`
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
