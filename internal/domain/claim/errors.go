package claim

import "errors"

var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrReviewerUnavailable = errors.New("reviewer unavailable")
	ErrClaimNotAssignable  = errors.New("claim not assignable")
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("claim not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("claim was modified concurrently")
)
