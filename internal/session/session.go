// Package session persists onboarding flow state between the HTTP requests
// of one sign-up: the role intent and OAuth binding material live here from
// the start request until the flow completes or expires.
package session

import (
	"context"
	"time"

	"github.com/founderbridge/onboarding/internal/identity"
	"github.com/founderbridge/onboarding/internal/profile"
)

// DefaultTTL bounds how long an abandoned flow is kept.
const DefaultTTL = 15 * time.Minute

// Flow is one onboarding flow's server-side state.
type Flow struct {
	ID           string             `json:"id"`
	RoleIntent   profile.Role       `json:"roleIntent"`
	Provider     identity.Provider  `json:"provider"`
	OAuthState   string             `json:"oauthState"`
	CodeVerifier string             `json:"codeVerifier"`
	Identity     *identity.Identity `json:"identity,omitempty"`
	ExpiresAt    time.Time          `json:"expiresAt"`
}

// Store persists flows. A nil flow with a nil error from Get means the flow
// is unknown or expired.
type Store interface {
	Create(ctx context.Context, f Flow) error
	Get(ctx context.Context, id string) (*Flow, error)
	Update(ctx context.Context, f Flow) error
	Delete(ctx context.Context, id string) error
}
