package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantDeactivated  = errors.New("tenant is deactivated")
	ErrEmailTaken         = errors.New("user already exists")
	ErrCompanyTaken       = errors.New("company already exists")
	ErrAlreadyPro         = errors.New("tenant is already on pro plan")

	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrForbidden       = errors.New("access denied")

	ErrLimitReached = errors.New("note limit reached")

	ErrNoteNotFound   = errors.New("note not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
)

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// fieldErrors collects validation failures; err returns nil when empty.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// LimitError is returned when a Free tenant is at its active-note cap. It
// matches ErrLimitReached.
type LimitError struct {
	Current int
	Max     int
	Plan    domain.Plan
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("note limit reached: %d of %d on %s plan", e.Current, e.Max, e.Plan)
}

func (e *LimitError) Is(target error) bool { return target == ErrLimitReached }
