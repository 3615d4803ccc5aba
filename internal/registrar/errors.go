package registrar

import (
	"errors"

	dErrors "zns/pkg/domain-errors"
	"zns/pkg/platform/sentinel"
)

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

// wrapError keeps domain codes from collaborators and classifies anything
// else as internal.
func wrapError(err error, msg string) error {
	if err == nil || dErrors.IsDomain(err) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
