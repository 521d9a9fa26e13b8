package notesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInvalidIdentifier  = "invalid_identifier"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeTenantDeactivated  = "tenant_deactivated"
	ErrorCodeConflict           = "conflict"
	ErrorCodeAlreadyPro         = "already_pro"
	ErrorCodeUnauthenticated    = "unauthenticated"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeLimitReached       = "limit_reached"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError is a non-2xx response decoded by the client.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string

	// Set on limit_reached
	CurrentNotes     int
	MaxNotes         int
	SubscriptionPlan string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notes api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is matches another *APIError by code, so callers can write
// errors.Is(err, notesdk.ErrLimitReached).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is, matched by code only.
var (
	ErrValidation         = &APIError{Code: ErrorCodeValidation}
	ErrInvalidIdentifier  = &APIError{Code: ErrorCodeInvalidIdentifier}
	ErrInvalidCredentials = &APIError{Code: ErrorCodeInvalidCredentials}
	ErrConflict           = &APIError{Code: ErrorCodeConflict}
	ErrUnauthenticated    = &APIError{Code: ErrorCodeUnauthenticated}
	ErrForbidden          = &APIError{Code: ErrorCodeForbidden}
	ErrLimitReached       = &APIError{Code: ErrorCodeLimitReached}
	ErrNotFound           = &APIError{Code: ErrorCodeNotFound}
)

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       ErrorCodeServerError,
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	apiErr := &APIError{
		StatusCode:       resp.StatusCode,
		Code:             er.Error,
		Message:          er.Message,
		Details:          er.Details,
		SubscriptionPlan: er.SubscriptionPlan,
	}
	if er.CurrentNotes != nil {
		apiErr.CurrentNotes = *er.CurrentNotes
	}
	if er.MaxNotes != nil {
		apiErr.MaxNotes = *er.MaxNotes
	}
	return apiErr
}
