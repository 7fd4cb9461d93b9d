// Package gateway completes interactive provider sign-ins and normalizes
// every outcome into an Identity or a closed set of auth failures. It returns
// identity facts only: no user creation, linking, or session management
// happens here.
package gateway

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/founderbridge/onboarding/internal/identity"
	applog "github.com/founderbridge/onboarding/internal/platform/logging"
)

// Callback carries the provider's answer delivered to the redirect endpoint.
// Exactly one of Code or ErrorCode is set on a well-formed callback.
type Callback struct {
	Code         string
	CodeVerifier string
	ErrorCode    string // OAuth error parameter, e.g. "access_denied"
	ErrorDetail  string // OAuth error_description parameter, if any
}

// Gateway is the identity provider gateway. AuthURL opens the flow; SignIn
// closes it, suspending only on network I/O and honoring ctx cancellation.
type Gateway interface {
	// AuthURL returns the provider authorization URL for the flow.
	AuthURL(p identity.Provider, state, codeChallenge string) (string, error)

	// SignIn normalizes the callback into an Identity. Every returned error
	// is an *identity.AuthFailure.
	SignIn(ctx context.Context, p identity.Provider, cb Callback) (*identity.Identity, error)
}

// provider implements one upstream's authorization-code flow.
type provider interface {
	authURL(state, codeChallenge string) string
	exchange(ctx context.Context, code, codeVerifier string) (*identity.Identity, error)
}

// OAuthGateway dispatches to the configured providers.
type OAuthGateway struct {
	providers map[identity.Provider]provider
}

// New creates a gateway over the configured providers. Nil providers are
// simply not registered, so a deployment may enable a subset.
func New(google *GoogleProvider, github *GithubProvider) *OAuthGateway {
	g := &OAuthGateway{providers: make(map[identity.Provider]provider)}
	if google != nil {
		g.providers[identity.ProviderGoogle] = google
	}
	if github != nil {
		g.providers[identity.ProviderGithub] = github
	}
	return g
}

// AuthURL builds the authorization URL. A flow that cannot start is reported
// as FailurePopupBlocked, the closed-set analog of a blocked popup window.
func (g *OAuthGateway) AuthURL(p identity.Provider, state, codeChallenge string) (string, error) {
	prov, ok := g.providers[p]
	if !ok {
		return "", identity.NewAuthFailure(identity.FailurePopupBlocked,
			fmt.Sprintf("provider %q is not configured", p))
	}
	return prov.authURL(state, codeChallenge), nil
}

// SignIn exchanges the callback for a normalized identity.
func (g *OAuthGateway) SignIn(ctx context.Context, p identity.Provider, cb Callback) (*identity.Identity, error) {
	if cb.ErrorCode != "" {
		return nil, failureFromCallbackError(cb.ErrorCode, cb.ErrorDetail)
	}
	if err := ctx.Err(); err != nil {
		return nil, identity.WrapAuthFailure(identity.FailureUserCancelled, err)
	}

	prov, ok := g.providers[p]
	if !ok {
		return nil, identity.NewAuthFailure(identity.FailurePopupBlocked,
			fmt.Sprintf("provider %q is not configured", p))
	}

	id, err := prov.exchange(ctx, cb.Code, cb.CodeVerifier)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, identity.WrapAuthFailure(identity.FailureUserCancelled, err)
		}
		var failure *identity.AuthFailure
		if errors.As(err, &failure) {
			return nil, failure
		}
		applog.LogError(ctx, "provider exchange failed", err, zap.String("provider", string(p)))
		return nil, identity.WrapAuthFailure(identity.FailureUnknown, err)
	}

	if id.Email == "" {
		return nil, identity.NewAuthFailure(identity.FailureMissingEmail,
			fmt.Sprintf("provider %q returned no email", p))
	}
	return id, nil
}

// failureFromCallbackError maps OAuth callback error codes onto the closed
// failure set. The mapping is exhaustive for codes the providers document;
// anything else is FailureUnknown with the detail preserved for logs.
func failureFromCallbackError(code, detail string) *identity.AuthFailure {
	switch code {
	case "access_denied", "consent_required", "interaction_required":
		return identity.NewAuthFailure(identity.FailureUserCancelled, code)
	case "redirect_uri_mismatch", "unauthorized_client", "admin_policy_enforced", "org_internal":
		return identity.NewAuthFailure(identity.FailureDomainNotAuthorized, code)
	default:
		if detail != "" {
			code = code + ": " + detail
		}
		return identity.NewAuthFailure(identity.FailureUnknown, code)
	}
}

// NewState returns a random URL-safe state token for the flow.
func NewState() string {
	return randomToken(32)
}

// GeneratePKCE returns a PKCE verifier and its S256 challenge.
func GeneratePKCE() (verifier, challenge string) {
	verifier = randomToken(32)
	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])
	return verifier, challenge
}

func randomToken(bytes int) string {
	b := make([]byte, bytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Compile-time interface check
var _ Gateway = (*OAuthGateway)(nil)
