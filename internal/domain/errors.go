package domain

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrConflict: another active record already occupies (owner, type).
	ErrConflict = errors.New("active document conflict")
	// ErrShadowConflict: the slot is blocked by a soft-deleted record and the
	// caller has not acknowledged the purge.
	ErrShadowConflict = errors.New("soft-deleted document conflict")

	// ErrInvalidToken covers every decode failure mode; the cause is never
	// distinguished for external callers.
	ErrInvalidToken = errors.New("invalid reference token")

	ErrNotFound = errors.New("not found")
)
