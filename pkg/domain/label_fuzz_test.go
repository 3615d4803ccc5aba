package domain

import (
	"testing"

	dErrors "zns/pkg/domain-errors"
)

// FuzzValidateLabel checks that validation never panics and that every
// accepted label is a non-empty string over [a-z0-9-].
//
// Justification: labels arrive from arbitrary callers and end up hashed
// into permanent identifiers.
func FuzzValidateLabel(f *testing.F) {
	f.Add("")
	f.Add("wilder")
	f.Add("UPPER")
	f.Add("a.b")
	f.Add(string([]byte{0x00, 0xff}))
	f.Add("-leading-and-trailing-")

	f.Fuzz(func(t *testing.T, input string) {
		err := ValidateLabel(input)
		if err == nil {
			if input == "" {
				t.Fatal("empty label accepted")
			}
			for _, c := range []byte(input) {
				if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
					t.Fatalf("label %q accepted with byte %x", input, c)
				}
			}
			return
		}
		if !dErrors.HasCode(err, dErrors.CodeInvalidLabel) && !dErrors.HasCode(err, dErrors.CodeInvalidLength) {
			t.Fatalf("unexpected error code: %v", err)
		}
	})
}
