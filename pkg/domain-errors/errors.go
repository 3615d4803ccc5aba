// Package domainerrors defines coded errors shared by every component.
//
// Components return these so callers can branch on the failure kind with
// HasCode instead of matching strings. Infrastructure facts (not found,
// conflict) come from pkg/platform/sentinel and are translated into coded
// errors at component boundaries.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure kind.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Registry codes.
const (
	CodeInvalidLabel                 Code = "invalid_label"
	CodeInvalidLength                Code = "invalid_length"
	CodeInvalidPriceConfig           Code = "invalid_price_config"
	CodeDomainAlreadyExists          Code = "domain_already_exists"
	CodeDistributionLockedOrNotExist Code = "distribution_locked_or_not_exist"
	CodeSenderNotApproved            Code = "sender_not_approved"
	CodeNotAuthorized                Code = "not_authorized"
	CodeNoBeneficiary                Code = "no_beneficiary"
	CodeInsufficientBalance          Code = "insufficient_balance"
	CodeInsufficientAllowance        Code = "insufficient_allowance"
	CodeNotBothOwner                 Code = "not_both_owner"
	CodeNotTokenOwner                Code = "not_token_owner"
	CodeRegistrationPaused           Code = "registration_paused"
	CodeZeroAddress                  Code = "zero_address"
	CodeZeroParentHash               Code = "zero_parent_hash"
	CodeValueUnchanged               Code = "value_unchanged"
	CodeReentrantCall                Code = "reentrant_call"
)

// Error is a coded domain error. Err, when set, is the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. Returns nil when err is nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost coded error in err's chain,
// or the empty code if there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether any coded error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// IsDomain reports whether err carries a non-internal code, i.e. a failure
// the caller can act on rather than an infrastructure fault.
func IsDomain(err error) bool {
	code := CodeOf(err)
	return code != "" && code != CodeInternal && code != CodeTimeout
}
