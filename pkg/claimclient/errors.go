package claimclient

import (
	"errors"
	"fmt"
)

// Error kinds a caller can branch on with errors.Is.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrClaimNotAssignable  = errors.New("claim not assignable")
	ErrReviewerUnavailable = errors.New("reviewer unavailable")
	ErrConflict            = errors.New("claim was modified concurrently")
	ErrValidation          = errors.New("validation error")
	ErrFileValidation      = errors.New("file validation error")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")

	// ErrNetwork wraps transport failures where no server response was read.
	ErrNetwork = errors.New("network error")

	// ErrStale means a mutation succeeded but the view could not be
	// reloaded afterwards. The mutation must not be repeated.
	ErrStale = errors.New("mutation applied, view not refreshed")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response. It matches the kinds above with
// errors.Is, so callers branch on kinds, not on status codes.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d %s", e.Status, e.Code)
	}
	return e.Message
}

var codeKinds = map[string]error{
	"INVALID_TRANSITION":    ErrInvalidTransition,
	"CLAIM_NOT_ASSIGNABLE":  ErrClaimNotAssignable,
	"REVIEWER_UNAVAILABLE":  ErrReviewerUnavailable,
	"CONFLICT":              ErrConflict,
	"VALIDATION_ERROR":      ErrValidation,
	"BAD_REQUEST":           ErrValidation,
	"FILE_VALIDATION_ERROR": ErrFileValidation,
	"NOT_FOUND":             ErrNotFound,
	"FORBIDDEN":             ErrForbidden,
	"UNAUTHORIZED":          ErrUnauthorized,
}

func (e *APIError) Is(target error) bool {
	kind, ok := codeKinds[e.Code]
	return ok && kind == target
}
