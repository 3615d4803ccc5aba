// Package httputil writes JSON responses and maps coded errors to HTTP status.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "zns/pkg/domain-errors"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a coded error body. Internal failures never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	if code == "" {
		code = dErrors.CodeInternal
	}
	status := StatusFor(code)

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, status, body)
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput,
		dErrors.CodeInvalidLabel, dErrors.CodeInvalidLength, dErrors.CodeInvalidPriceConfig,
		dErrors.CodeZeroAddress, dErrors.CodeZeroParentHash:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDomainAlreadyExists, dErrors.CodeValueUnchanged:
		return http.StatusConflict
	case dErrors.CodeNotAuthorized, dErrors.CodeSenderNotApproved,
		dErrors.CodeNotBothOwner, dErrors.CodeNotTokenOwner:
		return http.StatusForbidden
	case dErrors.CodeDistributionLockedOrNotExist, dErrors.CodeRegistrationPaused,
		dErrors.CodeInvalidState, dErrors.CodeNoBeneficiary:
		return http.StatusUnprocessableEntity
	case dErrors.CodeInsufficientBalance, dErrors.CodeInsufficientAllowance:
		return http.StatusPaymentRequired
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
