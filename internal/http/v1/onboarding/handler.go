// Package onboarding exposes the sign-up flow over HTTP. Each flow is a
// short-lived server-side state machine addressed by a flow id; domain
// outcomes (auth failures, store failures) are reported inside the flow
// snapshot, while transport problems map to HTTP errors.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/founderbridge/onboarding/internal/gateway"
	"github.com/founderbridge/onboarding/internal/identity"
	flow "github.com/founderbridge/onboarding/internal/onboarding"
	applog "github.com/founderbridge/onboarding/internal/platform/logging"
	"github.com/founderbridge/onboarding/internal/platform/timeutil"
	"github.com/founderbridge/onboarding/internal/profile"
	"github.com/founderbridge/onboarding/internal/session"
)

// Handler owns the live flow state machines and their persisted session
// records. Orchestrators live in process memory; the session store carries
// the OAuth binding material so a flow survives an instance restart.
type Handler struct {
	gateway  gateway.Gateway
	resolver profile.Resolver
	store    profile.Store
	sessions session.Store

	now      func() time.Time
	navDelay time.Duration

	mu     sync.Mutex
	active map[string]*flowEntry
}

type flowEntry struct {
	orch *flow.Orchestrator
	sink *flow.Collector
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// WithNavigationDelay overrides the post-submit pause. Tests use zero.
func WithNavigationDelay(d time.Duration) HandlerOption {
	return func(h *Handler) { h.navDelay = d }
}

// NewHandler creates a flow handler.
func NewHandler(gw gateway.Gateway, resolver profile.Resolver, store profile.Store, sessions session.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		gateway:  gw,
		resolver: resolver,
		store:    store,
		sessions: sessions,
		now:      time.Now,
		navDelay: -1,
		active:   make(map[string]*flowEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register wires the onboarding flow routes into the provided API router.
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID:   "start-onboarding",
		Method:        http.MethodPost,
		Path:          "/onboarding/flows",
		Summary:       "Start an onboarding flow",
		Description:   "Begins a sign-in attempt for the chosen role and provider and returns the provider authorization URL.",
		Tags:          []string{"Onboarding"},
		DefaultStatus: http.StatusCreated,
	}, h.start)

	huma.Register(api, huma.Operation{
		OperationID: "get-onboarding-flow",
		Method:      http.MethodGet,
		Path:        "/onboarding/flows/{flowId}",
		Summary:     "Read a flow snapshot",
		Tags:        []string{"Onboarding"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "complete-sign-in",
		Method:      http.MethodPost,
		Path:        "/onboarding/flows/{flowId}/callback",
		Summary:     "Deliver the provider callback",
		Description: "Feeds the provider redirect parameters into the flow. Sign-in failures are reported in the snapshot, not as HTTP errors.",
		Tags:        []string{"Onboarding"},
	}, h.callback)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-onboarding",
		Method:      http.MethodPost,
		Path:        "/onboarding/flows/{flowId}/cancel",
		Summary:     "Abandon an in-flight sign-in",
		Tags:        []string{"Onboarding"},
	}, h.cancel)

	huma.Register(api, huma.Operation{
		OperationID: "enter-signup-form",
		Method:      http.MethodGet,
		Path:        "/onboarding/flows/{flowId}/form/{role}",
		Summary:     "Enter a signup form",
		Description: "Guards direct navigation to the form. Without a signed-in identity the snapshot carries a redirect to the sign-in entry point.",
		Tags:        []string{"Onboarding"},
	}, h.enterForm)

	huma.Register(api, huma.Operation{
		OperationID: "update-signup-form",
		Method:      http.MethodPut,
		Path:        "/onboarding/flows/{flowId}/form",
		Summary:     "Replace the form draft",
		Description: "Replaces the draft and re-validates every field. The draft is kept even when invalid.",
		Tags:        []string{"Onboarding"},
	}, h.updateForm)

	huma.Register(api, huma.Operation{
		OperationID: "submit-onboarding",
		Method:      http.MethodPost,
		Path:        "/onboarding/flows/{flowId}/submit",
		Summary:     "Submit the profile",
		Description: "Validates the draft and writes the profile. Store failures are reported in the snapshot with the draft intact.",
		Tags:        []string{"Onboarding"},
	}, h.submit)
}

func (h *Handler) start(ctx context.Context, input *StartInput) (*StartOutput, error) {
	role := profile.Role(input.Body.Role)
	prov := identity.Provider(input.Body.Provider)

	state := gateway.NewState()
	verifier, challenge := gateway.GeneratePKCE()

	sink := flow.NewCollector()
	opts := []flow.Option{flow.WithClock(h.now)}
	if h.navDelay >= 0 {
		opts = append(opts, flow.WithNavigationDelay(h.navDelay))
	}
	orch := flow.New(h.gateway, h.resolver, h.store, sink, opts...)

	authURL, err := orch.Begin(role, prov, state, challenge)
	if err != nil {
		if identity.FailureKindOf(err) == identity.FailurePopupBlocked {
			return nil, huma.Error503ServiceUnavailable("sign-in is not available for this provider")
		}
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	flowID := uuid.NewString()
	expires := h.now().Add(session.DefaultTTL)
	if err := h.sessions.Create(ctx, session.Flow{
		ID:           flowID,
		RoleIntent:   role,
		Provider:     prov,
		OAuthState:   state,
		CodeVerifier: verifier,
		ExpiresAt:    expires,
	}); err != nil {
		applog.LogError(ctx, "flow session create failed", err, zap.String("flow_id", flowID))
		return nil, huma.Error500InternalServerError("could not start the flow")
	}

	h.mu.Lock()
	h.active[flowID] = &flowEntry{orch: orch, sink: sink}
	h.mu.Unlock()

	applog.LogInfo(ctx, "onboarding flow started",
		zap.String("flow_id", flowID),
		zap.String("role", string(role)),
		zap.String("provider", string(prov)))

	return &StartOutput{Body: StartData{
		FlowID:    flowID,
		AuthURL:   authURL,
		ExpiresAt: expires.UTC().Format(timeutil.RFC3339Millis),
	}}, nil
}

func (h *Handler) get(ctx context.Context, input *GetInput) (*FlowOutput, error) {
	entry, _, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}
	return h.snapshot(input.FlowID, entry), nil
}

func (h *Handler) callback(ctx context.Context, input *CallbackInput) (*FlowOutput, error) {
	entry, record, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}
	if input.Body.State != record.OAuthState {
		return nil, huma.Error400BadRequest("state parameter does not match this flow")
	}

	err = entry.orch.CompleteSignIn(ctx, gateway.Callback{
		Code:         input.Body.Code,
		CodeVerifier: record.CodeVerifier,
		ErrorCode:    input.Body.Error,
		ErrorDetail:  input.Body.ErrorDescription,
	})
	if errors.Is(err, flow.ErrInvalidTransition) {
		return nil, huma.Error409Conflict("the flow is not awaiting a sign-in callback")
	}

	switch entry.orch.State() {
	case flow.StateResolvedExisting:
		// Flow is finished for a returning user; the session has no
		// further requests to serve.
		h.finish(ctx, input.FlowID)
	case flow.StateFormActive:
		record.Identity = entry.orch.Identity()
		if err := h.sessions.Update(ctx, *record); err != nil {
			applog.LogError(ctx, "flow session update failed", err, zap.String("flow_id", input.FlowID))
		}
	}

	return h.snapshot(input.FlowID, entry), nil
}

func (h *Handler) cancel(ctx context.Context, input *CancelInput) (*FlowOutput, error) {
	entry, _, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}
	entry.orch.Cancel()
	out := h.snapshot(input.FlowID, entry)
	h.finish(ctx, input.FlowID)
	return out, nil
}

func (h *Handler) enterForm(ctx context.Context, input *EnterFormInput) (*FlowOutput, error) {
	entry, _, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}
	// A failed guard emits the redirect into the snapshot; the HTTP status
	// stays 200 because the response itself tells the client where to go.
	_ = entry.orch.EnterForm(profile.Role(input.Role))
	return h.snapshot(input.FlowID, entry), nil
}

func (h *Handler) updateForm(ctx context.Context, input *FormInput) (*FlowOutput, error) {
	entry, _, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}

	form := formFromBody(input)
	err = entry.orch.UpdateForm(form)
	if errors.Is(err, flow.ErrInvalidTransition) {
		return nil, huma.Error409Conflict(err.Error())
	}
	if err != nil {
		return nil, validationError(err)
	}
	return h.snapshot(input.FlowID, entry), nil
}

func (h *Handler) submit(ctx context.Context, input *SubmitInput) (*FlowOutput, error) {
	entry, _, err := h.resume(ctx, input.FlowID)
	if err != nil {
		return nil, err
	}

	err = entry.orch.Submit(ctx)
	if errors.Is(err, flow.ErrInvalidTransition) {
		return nil, huma.Error409Conflict(err.Error())
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return nil, validationError(err)
	}
	// Store failures stay in the snapshot: the draft is intact and the
	// notification tells the user what to do.

	out := h.snapshot(input.FlowID, entry)
	if entry.orch.State() == flow.StateCompleted {
		h.finish(ctx, input.FlowID)
	}
	return out, nil
}

// resume returns the live flow entry, rebuilding the orchestrator from the
// session record when this instance has not seen the flow before.
func (h *Handler) resume(ctx context.Context, flowID string) (*flowEntry, *session.Flow, error) {
	record, err := h.sessions.Get(ctx, flowID)
	if err != nil {
		applog.LogError(ctx, "flow session read failed", err, zap.String("flow_id", flowID))
		return nil, nil, huma.Error500InternalServerError("could not load the flow")
	}
	if record == nil {
		return nil, nil, huma.Error404NotFound("unknown or expired flow")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if entry, ok := h.active[flowID]; ok {
		return entry, record, nil
	}

	sink := flow.NewCollector()
	opts := []flow.Option{flow.WithClock(h.now)}
	if h.navDelay >= 0 {
		opts = append(opts, flow.WithNavigationDelay(h.navDelay))
	}
	orch := flow.New(h.gateway, h.resolver, h.store, sink, opts...)
	if _, err := orch.Begin(record.RoleIntent, record.Provider, record.OAuthState, ""); err != nil {
		return nil, nil, huma.Error500InternalServerError("could not resume the flow")
	}
	if record.Identity != nil {
		// Sign-in already completed on another instance; seat the persisted
		// identity so the rebuilt flow is back in form collection.
		if err := orch.RestoreIdentity(record.Identity); err != nil {
			return nil, nil, huma.Error500InternalServerError("could not resume the flow")
		}
	}
	sink.Drain()

	entry := &flowEntry{orch: orch, sink: sink}
	h.active[flowID] = entry
	return entry, record, nil
}

// finish drops a settled flow from memory and from the session store.
func (h *Handler) finish(ctx context.Context, flowID string) {
	h.mu.Lock()
	delete(h.active, flowID)
	h.mu.Unlock()
	if err := h.sessions.Delete(ctx, flowID); err != nil {
		applog.LogError(ctx, "flow session delete failed", err, zap.String("flow_id", flowID))
	}
}

// snapshot drains the collector into a flow view.
func (h *Handler) snapshot(flowID string, entry *flowEntry) *FlowOutput {
	navs, notes := entry.sink.Drain()
	data := FlowData{
		ID:            flowID,
		State:         entry.orch.State().String(),
		Role:          string(entry.orch.RoleIntent()),
		Provider:      string(entry.orch.Provider()),
		Navigations:   toNavigationViews(navs),
		Notifications: toNotificationViews(notes),
	}
	if f := entry.orch.LastFailure(); f != nil {
		data.Failure = failureLabel(f)
	}
	return &FlowOutput{Body: data}
}

// failureLabel renders the last failure's kind for the snapshot. Auth and
// store failures have distinct closed kind sets.
func failureLabel(err error) string {
	var sf *profile.StoreError
	if errors.As(err, &sf) {
		return "store_" + sf.Kind.String()
	}
	return identity.FailureKindOf(err).String()
}

// formFromBody builds the role-specific draft from the request body.
func formFromBody(input *FormInput) flow.Form {
	b := input.Body
	if profile.Role(b.Role) == profile.RoleRecruiter {
		return &flow.RecruiterForm{
			FirstName:      b.FirstName,
			LastName:       b.LastName,
			Email:          b.Email,
			Company:        b.Company,
			Position:       b.Position,
			CompanySize:    b.CompanySize,
			Industry:       b.Industry,
			Bio:            b.Bio,
			CompanyWebsite: b.CompanyWebsite,
			LinkedinURL:    b.LinkedinURL,
		}
	}
	return &flow.DeveloperForm{
		FirstName:    b.FirstName,
		LastName:     b.LastName,
		Email:        b.Email,
		Experience:   b.Experience,
		Skills:       b.Skills,
		Bio:          b.Bio,
		GithubHandle: b.GithubHandle,
		LinkedinURL:  b.LinkedinURL,
		PortfolioURL: b.PortfolioURL,
	}
}

// validationError converts validator failures into a 422 with one detail per
// failed field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return huma.Error422UnprocessableEntity(err.Error())
	}
	details := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, &huma.ErrorDetail{
			Message:  fmt.Sprintf("failed %q validation", fe.Tag()),
			Location: "body." + lowerFirst(fe.Field()),
		})
	}
	return huma.Error422UnprocessableEntity("invalid form", details...)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
