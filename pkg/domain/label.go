package domain

import (
	dErrors "zns/pkg/domain-errors"
)

// ValidateLabel enforces the label character class [a-z0-9-]+.
// Empty labels fail with CodeInvalidLength, anything else outside the
// class with CodeInvalidLabel.
func ValidateLabel(label string) error {
	if len(label) == 0 {
		return dErrors.New(dErrors.CodeInvalidLength, "label must not be empty")
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return dErrors.Newf(dErrors.CodeInvalidLabel, "label %q contains invalid character at %d", label, i)
		}
	}
	return nil
}
