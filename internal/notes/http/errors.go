package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/notes/internal/notes/service"
	"github.com/aussiebroadwan/notes/pkg/httpx"
	"github.com/aussiebroadwan/notes/pkg/notesdk"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

// writeError is the only place service errors become HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *service.ValidationError
		le *service.LimitError
	)

	switch {
	case errors.As(err, &ve):
		writeValidation(w, ve.Fields)

	case errors.As(err, &le):
		current, limit := le.Current, le.Max
		httpx.WriteJSON(w, http.StatusForbidden, notesdk.ErrorResponse{
			Error:            notesdk.ErrorCodeLimitReached,
			Message:          "Note limit reached. Upgrade to Pro for unlimited notes.",
			CurrentNotes:     &current,
			MaxNotes:         &limit,
			SubscriptionPlan: string(le.Plan),
		})

	case errors.Is(err, service.ErrInvalidIdentifier):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeInvalidIdentifier, "Invalid identifier")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrTenantDeactivated):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeTenantDeactivated, "Tenant account is deactivated")
	case errors.Is(err, service.ErrEmailTaken):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeConflict, "User already exists")
	case errors.Is(err, service.ErrCompanyTaken):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeConflict, "Company already exists, please choose a different company name")
	case errors.Is(err, service.ErrAlreadyPro):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeAlreadyPro, "Tenant is already on Pro plan")

	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteBearerChallenge(w, notesdk.ErrorCodeTokenExpired, "Token has expired")
	case errors.Is(err, service.ErrTokenInvalid):
		httpx.WriteBearerChallenge(w, notesdk.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, service.ErrUnauthenticated):
		httpx.WriteBearerChallenge(w, notesdk.ErrorCodeUnauthenticated, "Authentication required")

	case errors.Is(err, service.ErrForbidden):
		writeCode(w, http.StatusForbidden, notesdk.ErrorCodeForbidden, "Access denied")

	case errors.Is(err, service.ErrNoteNotFound):
		writeCode(w, http.StatusNotFound, notesdk.ErrorCodeNotFound, "Note not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeCode(w, http.StatusNotFound, notesdk.ErrorCodeNotFound, "User not found")
	case errors.Is(err, service.ErrTenantNotFound):
		writeCode(w, http.StatusNotFound, notesdk.ErrorCodeNotFound, "Tenant not found")

	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		writeCode(w, http.StatusInternalServerError, notesdk.ErrorCodeServerError, "Internal server error")
	}
}

func writeCode(w http.ResponseWriter, status int, code, msg string) {
	httpx.WriteError(w, status, code, msg)
}

func writeValidation(w http.ResponseWriter, details map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, notesdk.ErrorResponse{
		Error:   notesdk.ErrorCodeValidation,
		Message: "Validation failed",
		Details: details,
	})
}

// decode reads a JSON body, writing the 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeJSON(w, r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, httpx.ErrBodyTooBig):
		writeCode(w, http.StatusRequestEntityTooLarge, notesdk.ErrorCodeValidation, "Request body too large")
	case errors.Is(err, httpx.ErrEmptyBody):
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeValidation, "Request body is required")
	default:
		writeCode(w, http.StatusBadRequest, notesdk.ErrorCodeValidation, "Invalid JSON body")
	}
	return false
}

// validator is implemented by the notesdk request contracts.
type validator interface {
	Validate() map[string]string
}

// decodeValid decodes a request contract and runs its boundary validation.
func decodeValid(w http.ResponseWriter, r *http.Request, dst validator) bool {
	if !decode(w, r, dst) {
		return false
	}
	if errs := dst.Validate(); errs != nil {
		writeValidation(w, errs)
		return false
	}
	return true
}
