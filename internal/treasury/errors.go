package treasury

import (
	dErrors "zns/pkg/domain-errors"
)

// wrapError keeps domain codes and classifies everything else as internal.
func wrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if dErrors.IsDomain(err) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
