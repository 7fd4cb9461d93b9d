package profile

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store errors that are not kind-carrying StoreErrors.
var (
	// ErrNotFound indicates no document exists for the id in the partition.
	ErrNotFound = errors.New("profile not found")

	// ErrProfileConflict indicates the same id was found in both role
	// collections. The model invariant forbids this; the resolver reports it
	// rather than silently picking a role.
	ErrProfileConflict = errors.New("profile exists in both role collections")
)

// StoreErrorKind enumerates the persistence failure categories callers may
// branch on. The kind is preserved verbatim from store to orchestrator; only
// the user-facing message text is rewritten downstream.
type StoreErrorKind int

const (
	StoreUnknown StoreErrorKind = iota
	StorePermissionDenied
	StoreUnauthenticated
	StoreUnavailable
)

// String returns the kind's stable identifier, used in logs.
func (k StoreErrorKind) String() string {
	switch k {
	case StorePermissionDenied:
		return "permission_denied"
	case StoreUnauthenticated:
		return "unauthenticated"
	case StoreUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// StoreError wraps a persistence failure with its category.
type StoreError struct {
	Kind   StoreErrorKind
	Detail string
	cause  error
}

func (e *StoreError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("store error: %s", e.Kind)
	}
	return fmt.Sprintf("store error: %s: %s", e.Kind, e.Detail)
}

func (e *StoreError) Unwrap() error { return e.cause }

// NewStoreError builds a StoreError of the given kind.
func NewStoreError(kind StoreErrorKind, detail string) *StoreError {
	return &StoreError{Kind: kind, Detail: detail}
}

// StoreKindOf extracts the store error kind, returning StoreUnknown when err
// is not a StoreError.
func StoreKindOf(err error) StoreErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return StoreUnknown
}

// wrapStatusError categorizes a Firestore RPC error by its gRPC status code.
// codes.NotFound is handled by callers before reaching here.
func wrapStatusError(err error) *StoreError {
	kind := StoreUnknown
	switch status.Code(err) {
	case codes.PermissionDenied:
		kind = StorePermissionDenied
	case codes.Unauthenticated:
		kind = StoreUnauthenticated
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		kind = StoreUnavailable
	}
	return &StoreError{Kind: kind, Detail: err.Error(), cause: err}
}
