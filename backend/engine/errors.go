package engine

import (
	"errors"
	"fmt"

	"kitlab/backend/store"
)

// Sentinel errors for engine verdicts. Denials are expected outcomes of
// normal operation and are matched with errors.Is; only ErrStoreUnavailable
// represents an actual failure.
var (
	// ErrNotAuthenticated is returned when gated content is requested by an
	// anonymous caller.
	ErrNotAuthenticated = errors.New("engine: not authenticated")

	// ErrNotFound is returned when an item is absent or deliberately hidden
	// (unpublished content looks nonexistent to ordinary callers).
	ErrNotFound = errors.New("engine: not found")

	// ErrAccessDenied is returned when an authenticated caller lacks the
	// required kit entitlement.
	ErrAccessDenied = errors.New("engine: access denied")

	// ErrStoreUnavailable is returned when the backing store failed to
	// answer. Distinct from not-found, never treated as a denial.
	ErrStoreUnavailable = errors.New("engine: store unavailable")

	// ErrConflictIgnored marks a best-effort audit write that failed during
	// a grant. It is reported on the result, never as the grant's error.
	ErrConflictIgnored = errors.New("engine: audit write failed")
)

// DenyReason records why access was denied. Kept for logging; not all
// surfaces expose it.
type DenyReason string

const (
	ReasonKitNotOwned        DenyReason = "kit_not_owned"
	ReasonEntitlementExpired DenyReason = "entitlement_expired"
	ReasonCourseNotPublic    DenyReason = "course_not_public"
)

// AccessError is an ErrAccessDenied carrying its reason.
type AccessError struct {
	Reason DenyReason
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("engine: access denied (%s)", e.Reason)
}

func (e *AccessError) Is(target error) bool {
	return target == ErrAccessDenied
}

func deny(reason DenyReason) error {
	return &AccessError{Reason: reason}
}

// Reason extracts the denial reason from an error, if it has one.
func Reason(err error) (DenyReason, bool) {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Reason, true
	}
	return "", false
}

// storeErr translates store errors at the engine boundary: a missing row
// becomes ErrNotFound, anything else a wrapped ErrStoreUnavailable.
func storeErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
