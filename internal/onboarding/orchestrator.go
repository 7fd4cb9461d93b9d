// Package onboarding sequences gateway, resolver, form collection, and store
// writes for one sign-up flow, and owns every error-to-user-message mapping.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/founderbridge/onboarding/internal/gateway"
	"github.com/founderbridge/onboarding/internal/identity"
	applog "github.com/founderbridge/onboarding/internal/platform/logging"
	"github.com/founderbridge/onboarding/internal/profile"
)

// State is the orchestrator's position in the onboarding flow.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateAuthenticatedUnresolved
	StateResolvedExisting
	StateFormActive
	StateSubmitting
	StateCompleted
)

// String returns the state's stable identifier, used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticatedUnresolved:
		return "authenticated_unresolved"
	case StateResolvedExisting:
		return "resolved_existing"
	case StateFormActive:
		return "form_active"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition indicates an operation that the current state
	// does not permit.
	ErrInvalidTransition = errors.New("invalid onboarding transition")

	// ErrNotAuthenticated indicates the form was entered without a prior
	// successful sign-in in this flow.
	ErrNotAuthenticated = errors.New("no authenticated identity in this flow")
)

// defaultNavigationDelay lets the success notification be seen before the
// post-submit navigation directive fires.
const defaultNavigationDelay = 1500 * time.Millisecond

// Orchestrator is the per-flow onboarding state machine. All dependencies are
// injected; it holds no process-wide state.
type Orchestrator struct {
	gateway  gateway.Gateway
	resolver profile.Resolver
	store    profile.Store
	sink     Sink

	now      func() time.Time
	navDelay time.Duration

	mu          sync.Mutex
	state       State
	roleIntent  profile.Role
	provider    identity.Provider
	ident       *identity.Identity
	form        Form
	submitting  bool
	lastFailure error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithNavigationDelay overrides the pause between the success notification
// and the navigation to root. Tests use zero.
func WithNavigationDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.navDelay = d }
}

// New creates an orchestrator in StateIdle.
func New(gw gateway.Gateway, resolver profile.Resolver, store profile.Store, sink Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:  gw,
		resolver: resolver,
		store:    store,
		sink:     sink,
		now:      time.Now,
		navDelay: defaultNavigationDelay,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RoleIntent returns the role chosen when the flow began. It is fixed for
// the whole flow and never renegotiated.
func (o *Orchestrator) RoleIntent() profile.Role {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.roleIntent
}

// Provider returns the identity provider chosen when the flow began.
func (o *Orchestrator) Provider() identity.Provider {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.provider
}

// Identity returns the signed-in identity, or nil before sign-in completes.
func (o *Orchestrator) Identity() *identity.Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ident
}

// Form returns the current form draft, or nil outside form collection.
func (o *Orchestrator) Form() Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// LastFailure returns the most recent failure the flow passed through, or
// nil. It is cleared when a new sign-in attempt begins.
func (o *Orchestrator) LastFailure() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastFailure
}

// Begin starts a sign-in attempt for the chosen role intent and provider and
// returns the provider authorization URL. Idle -> Authenticating.
func (o *Orchestrator) Begin(role profile.Role, p identity.Provider, flowState, codeChallenge string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle {
		return "", fmt.Errorf("%w: begin from %s", ErrInvalidTransition, o.state)
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q", p)
	}

	url, err := o.gateway.AuthURL(p, flowState, codeChallenge)
	if err != nil {
		o.failAuthLocked(err)
		return "", err
	}

	o.roleIntent = role
	o.provider = p
	o.lastFailure = nil
	o.state = StateAuthenticating
	return url, nil
}

// CompleteSignIn feeds the provider outcome into the flow.
// Authenticating -> AuthenticatedUnresolved on success, then immediately
// resolves to ResolvedExisting or FormActive. Any auth failure settles back
// on Idle so the user may retry.
func (o *Orchestrator) CompleteSignIn(ctx context.Context, cb gateway.Callback) error {
	o.mu.Lock()
	if o.state != StateAuthenticating {
		o.mu.Unlock()
		return fmt.Errorf("%w: sign-in completion from %s", ErrInvalidTransition, o.state)
	}
	p := o.provider
	o.mu.Unlock()

	ident, err := o.gateway.SignIn(ctx, p, cb)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAuthenticating {
		// Cancelled while the exchange was in flight.
		return fmt.Errorf("%w: sign-in completion from %s", ErrInvalidTransition, o.state)
	}
	if err != nil {
		o.failAuthLocked(err)
		return err
	}

	o.ident = ident
	o.state = StateAuthenticatedUnresolved
	return o.resolveLocked(ctx)
}

// RestoreIdentity seats an identity that already signed in earlier in this
// flow, re-entering form collection without another provider round trip. It
// is used when a flow is rebuilt from its persisted session record after an
// instance restart. Authenticating -> FormActive. No directives are emitted;
// the client received them when sign-in originally completed.
func (o *Orchestrator) RestoreIdentity(ident *identity.Identity) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ident == nil {
		return ErrNotAuthenticated
	}
	if o.state != StateAuthenticating {
		return fmt.Errorf("%w: identity restore from %s", ErrInvalidTransition, o.state)
	}
	o.ident = ident
	o.form = NewForm(o.roleIntent, ident)
	o.state = StateFormActive
	return nil
}

// Cancel abandons an in-flight sign-in, equivalent to the user closing the
// provider window. Settles back on Idle.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAuthenticating {
		return
	}
	o.failAuthLocked(identity.NewAuthFailure(identity.FailureUserCancelled, "flow abandoned"))
}

// resolveLocked routes an authenticated identity either to its existing
// role's dashboard or into form collection for the session's role intent.
func (o *Orchestrator) resolveLocked(ctx context.Context) error {
	res, err := o.resolver.Lookup(ctx, o.ident.ID)
	if err != nil {
		applog.LogError(ctx, "profile lookup failed", err, zap.String("uid", o.ident.ID))
		o.lastFailure = err
		o.ident = nil
		o.state = StateIdle
		o.sink.Notify(Notification{
			Severity: SeverityError,
			Title:    "Sign-In Problem",
			Body:     "We could not look up your profile. Please try again.",
		})
		return err
	}

	if res.Exists {
		// A returning user is routed to their stored role; the session's
		// role intent does not win.
		o.state = StateResolvedExisting
		o.sink.Navigate(Navigation{Target: DashboardPath(res.Role)})
		return nil
	}

	first, last := o.ident.SplitName()
	o.form = NewForm(o.roleIntent, o.ident)
	o.state = StateFormActive
	o.sink.Navigate(Navigation{
		Target: SignupPath(o.roleIntent),
		Prefill: &FormPrefill{
			FirstName: first,
			LastName:  last,
			Email:     o.ident.Email,
			AvatarURL: o.ident.AvatarURL,
		},
	})
	return nil
}

// EnterForm guards direct navigation to the form: without an identity from
// this flow, the visitor is redirected to the sign-in entry point for the
// intended role.
func (o *Orchestrator) EnterForm(role profile.Role) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateFormActive && o.ident != nil {
		return nil
	}
	o.sink.Navigate(Navigation{Target: AuthPath(role)})
	return ErrNotAuthenticated
}

// UpdateForm replaces the draft and re-validates the whole form. The draft
// is kept even when invalid so no entered data is lost.
func (o *Orchestrator) UpdateForm(form Form) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateFormActive {
		return fmt.Errorf("%w: form edit from %s", ErrInvalidTransition, o.state)
	}
	if form.Role() != o.roleIntent {
		return fmt.Errorf("%w: form role %q does not match flow role %q",
			ErrInvalidTransition, form.Role(), o.roleIntent)
	}

	o.form = form
	return form.Validate()
}

// Submit validates the draft and writes the profile. FormActive ->
// Submitting -> Completed on success; a store failure settles back on
// FormActive with the draft intact. A second submit while one is in flight
// is ignored.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	switch {
	case o.state == StateSubmitting || o.submitting:
		o.mu.Unlock()
		return nil
	case o.state != StateFormActive:
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, state)
	}

	if err := o.form.Validate(); err != nil {
		o.mu.Unlock()
		return err
	}

	o.submitting = true
	o.state = StateSubmitting
	p := o.form.buildProfile(o.ident)
	o.mu.Unlock()

	err := o.store.Upsert(ctx, p)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.submitting = false

	if err != nil {
		applog.LogError(ctx, "profile upsert failed", err,
			zap.String("uid", profile.BaseOf(p).ID),
			zap.String("kind", profile.StoreKindOf(err).String()))
		o.lastFailure = err
		o.state = StateFormActive
		o.sink.Notify(notificationForStoreError(err))
		return err
	}

	o.state = StateCompleted
	o.sink.Notify(Notification{
		Severity: SeveritySuccess,
		Title:    "Profile Created",
		Body:     "Your profile has been created successfully.",
	})

	// Fixed short pause so the notification is seen before leaving the page.
	if o.navDelay > 0 {
		timer := time.NewTimer(o.navDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	o.sink.Navigate(Navigation{Target: PathRoot})
	return nil
}

// failAuthLocked records an auth failure, notifies the user, and settles the
// flow back on Idle for retry.
func (o *Orchestrator) failAuthLocked(err error) {
	o.lastFailure = err
	o.ident = nil
	o.form = nil
	o.state = StateIdle
	o.sink.Notify(notificationForAuthFailure(err))
}

// notificationForAuthFailure maps every declared failure kind onto its own
// user-facing message. FailureUnknown carries provider detail in logs only.
func notificationForAuthFailure(err error) Notification {
	switch identity.FailureKindOf(err) {
	case identity.FailureUserCancelled:
		return Notification{
			Severity: SeverityInfo,
			Title:    "Authentication Cancelled",
			Body:     "You closed the authentication window. Please try again.",
		}
	case identity.FailurePopupBlocked:
		return Notification{
			Severity: SeverityError,
			Title:    "Sign-In Unavailable",
			Body:     "The sign-in flow could not be started. Please try again.",
		}
	case identity.FailureDomainNotAuthorized:
		return Notification{
			Severity: SeverityError,
			Title:    "Domain Not Authorized",
			Body:     "This domain is not authorized for authentication. Please contact support.",
		}
	case identity.FailureMissingEmail:
		return Notification{
			Severity: SeverityError,
			Title:    "Email Required",
			Body:     "Your provider did not share an email address. Please use an account with a verified email.",
		}
	default:
		return Notification{
			Severity: SeverityError,
			Title:    "Authentication Error",
			Body:     "Failed to sign in. Please try again.",
		}
	}
}

// notificationForStoreError maps store failure kinds onto user-facing
// messages. Credential problems get an actionable re-authentication message;
// everything else a generic retry.
func notificationForStoreError(err error) Notification {
	switch profile.StoreKindOf(err) {
	case profile.StorePermissionDenied, profile.StoreUnauthenticated:
		return Notification{
			Severity: SeverityError,
			Title:    "Session Expired",
			Body:     "Please sign in again to save your profile.",
		}
	default:
		return Notification{
			Severity: SeverityError,
			Title:    "Profile Not Saved",
			Body:     "Something went wrong while saving your profile. Please try again.",
		}
	}
}
