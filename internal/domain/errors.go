package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that the web layer can map to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound indicates a resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates a missing, malformed, or unverifiable
	// token. Surfaced as "please sign in"; never retried internally.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionExpired indicates a valid signature past its expiry, or a
	// stale session-liveness marker. Distinct from ErrUnauthenticated so
	// the caller can offer a silent refresh.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden indicates the permission evaluator denied the request.
	ErrForbidden = errors.New("forbidden")

	// ErrNotOwner indicates a revoke attempt by someone who neither owns
	// the share nor is an administrator.
	ErrNotOwner = errors.New("not share owner")

	// Share resolution failures. Distinguishable internally for the audit
	// log; the boundary collapses them into one generic message so the
	// responses cannot be used as an oracle for link state.
	ErrShareNotFound = errors.New("share not found")
	ErrShareExpired  = errors.New("share expired")
	ErrShareDisabled = errors.New("share disabled")

	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("already exists")
)

// ForbiddenError carries the deny reason class for logging. The reason is
// for the log line, not the response body: the web layer sends a generic
// 403 so resource existence does not leak to unauthorized callers.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string   { return "forbidden: " + e.Reason }
func (e *ForbiddenError) StatusCode() int { return http.StatusForbidden }

// Is allows errors.Is() to match against ErrForbidden.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// QuotaExceededError is reported before any bytes reach the object store.
// Remaining is included so the caller can show a precise message.
type QuotaExceededError struct {
	Remaining int64
	Requested int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d bytes requested, %d remaining", e.Requested, e.Remaining)
}

func (e *QuotaExceededError) StatusCode() int { return http.StatusInsufficientStorage }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
