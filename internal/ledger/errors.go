package ledger

import (
	"errors"

	"zns/pkg/platform/sentinel"
)

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
