package gateway

import (
	"context"

	"github.com/founderbridge/onboarding/internal/identity"
)

// MockGateway implements Gateway for unit tests.
type MockGateway struct {
	URL      string
	Identity *identity.Identity
	Err      error
}

// AuthURL returns the configured URL.
func (m *MockGateway) AuthURL(_ identity.Provider, _, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

// SignIn returns the configured identity or error, honoring a callback
// error code the same way the real gateway does.
func (m *MockGateway) SignIn(_ context.Context, _ identity.Provider, cb Callback) (*identity.Identity, error) {
	if cb.ErrorCode != "" {
		return nil, failureFromCallbackError(cb.ErrorCode, cb.ErrorDetail)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Identity, nil
}

// TestIdentity returns a standard test identity.
func TestIdentity() *identity.Identity {
	return &identity.Identity{
		ID:          "google:test-user-123",
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		AvatarURL:   "https://example.com/ada.png",
	}
}

// Compile-time interface check
var _ Gateway = (*MockGateway)(nil)
