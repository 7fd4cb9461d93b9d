package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Provider identifies a supported sign-in provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGithub Provider = "github"
)

// Valid reports whether p is a declared provider.
func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderGithub
}

// Identity is the normalized result of a successful third-party sign-in.
// It is ephemeral: held for one onboarding flow and never persisted directly.
type Identity struct {
	ID          string // provider-assigned, stable across sessions
	DisplayName string
	Email       string
	AvatarURL   string
}

// SplitName splits the display name into first/last at the first whitespace.
// "Ada Lovelace" becomes ("Ada", "Lovelace"); a single token has no last name.
func (i *Identity) SplitName() (first, last string) {
	name := strings.TrimSpace(i.DisplayName)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}

// FailureKind enumerates every way an interactive sign-in can fail.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureUserCancelled
	FailurePopupBlocked
	FailureDomainNotAuthorized
	FailureMissingEmail
)

// String returns the kind's stable identifier, used in logs.
func (k FailureKind) String() string {
	switch k {
	case FailureUserCancelled:
		return "user_cancelled"
	case FailurePopupBlocked:
		return "popup_blocked"
	case FailureDomainNotAuthorized:
		return "domain_not_authorized"
	case FailureMissingEmail:
		return "missing_email"
	default:
		return "unknown"
	}
}

// AuthFailure is the closed error type returned by the gateway. Detail is
// provider-supplied diagnostic text; it is logged for FailureUnknown and never
// shown to end users.
type AuthFailure struct {
	Kind   FailureKind
	Detail string
	cause  error
}

// NewAuthFailure builds a failure of the given kind.
func NewAuthFailure(kind FailureKind, detail string) *AuthFailure {
	return &AuthFailure{Kind: kind, Detail: detail}
}

// WrapAuthFailure builds a failure that preserves the underlying error.
func WrapAuthFailure(kind FailureKind, err error) *AuthFailure {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &AuthFailure{Kind: kind, Detail: detail, cause: err}
}

func (f *AuthFailure) Error() string {
	if f.Detail == "" {
		return fmt.Sprintf("auth failure: %s", f.Kind)
	}
	return fmt.Sprintf("auth failure: %s: %s", f.Kind, f.Detail)
}

func (f *AuthFailure) Unwrap() error { return f.cause }

// FailureKindOf extracts the failure kind from err, returning FailureUnknown
// when err is not an AuthFailure.
func FailureKindOf(err error) FailureKind {
	var f *AuthFailure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureUnknown
}
