package onboarding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/founderbridge/onboarding/internal/gateway"
	appmiddleware "github.com/founderbridge/onboarding/internal/middleware"
	applog "github.com/founderbridge/onboarding/internal/platform/logging"
	"github.com/founderbridge/onboarding/internal/profile"
	"github.com/founderbridge/onboarding/internal/respond"
	"github.com/founderbridge/onboarding/internal/session"
)

type testEnv struct {
	router   chi.Router
	gw       *gateway.MockGateway
	store    *profile.MemoryStore
	sessions *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gw := &gateway.MockGateway{
		URL:      "https://provider.example.com/authorize",
		Identity: gateway.TestIdentity(),
	}
	store := profile.NewMemoryStore()
	sessions := session.NewMemoryStore()
	h := NewHandler(gw, profile.NewStoreResolver(store), store, sessions,
		WithNavigationDelay(0))

	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	api := humachi.New(router, huma.DefaultConfig("OnboardingTest", "test"))
	Register(api, h)

	return &testEnv{router: router, gw: gw, store: store, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) startFlow(t *testing.T) (flowID, oauthState string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/onboarding/flows",
		`{"role":"developer","provider":"google"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var data StartData
	if err := json.Unmarshal(resp.Body.Bytes(), &data); err != nil {
		t.Fatalf("start: decode: %v", err)
	}
	record, err := e.sessions.Get(context.Background(), data.FlowID)
	if err != nil || record == nil {
		t.Fatalf("start: expected a persisted flow, got %v %v", record, err)
	}
	return data.FlowID, record.OAuthState
}

func decodeFlow(t *testing.T, resp *httptest.ResponseRecorder) FlowData {
	t.Helper()
	var data FlowData
	if err := json.Unmarshal(resp.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode flow: %v: %s", err, resp.Body.String())
	}
	return data
}

func TestStartFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows",
		`{"role":"developer","provider":"google"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var data StartData
	if err := json.Unmarshal(resp.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.FlowID == "" || data.AuthURL != env.gw.URL {
		t.Fatalf("unexpected start payload %+v", data)
	}
}

func TestStartRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows",
		`{"role":"founder","provider":"google"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestCallbackNewUserGetsSignupNavigation(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	data := decodeFlow(t, resp)
	if data.State != "form_active" {
		t.Fatalf("expected form_active, got %s", data.State)
	}
	if len(data.Navigations) != 1 || data.Navigations[0].Target != "/signup/developer" {
		t.Fatalf("unexpected navigations %+v", data.Navigations)
	}
	pre := data.Navigations[0].Prefill
	if pre == nil || pre.FirstName != "Ada" || pre.LastName != "Lovelace" {
		t.Fatalf("unexpected prefill %+v", pre)
	}
	if data.Provider != "google" {
		t.Fatalf("expected google provider in the snapshot, got %q", data.Provider)
	}
}

func TestCallbackExistingUserGetsDashboard(t *testing.T) {
	env := newTestEnv(t)
	err := env.store.Upsert(context.Background(), &profile.RecruiterProfile{
		Base: profile.Base{ID: env.gw.Identity.ID, DisplayName: "Ada Lovelace", Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	flowID, state := env.startFlow(t)
	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)

	data := decodeFlow(t, resp)
	if data.State != "resolved_existing" {
		t.Fatalf("expected resolved_existing, got %s", data.State)
	}
	if len(data.Navigations) != 1 || data.Navigations[0].Target != "/dashboard/recruiter" {
		t.Fatalf("unexpected navigations %+v", data.Navigations)
	}

	// The settled flow is gone; further requests see 404.
	resp = env.do(t, http.MethodGet, "/onboarding/flows/"+flowID, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after settlement, got %d", resp.Code)
	}
}

func TestCallbackProviderErrorStaysInFlow(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","error":"access_denied"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("domain failures ride the snapshot, got %d", resp.Code)
	}

	data := decodeFlow(t, resp)
	if data.State != "idle" {
		t.Fatalf("expected idle, got %s", data.State)
	}
	if data.Failure != "user_cancelled" {
		t.Fatalf("expected user_cancelled, got %q", data.Failure)
	}
	if len(data.Notifications) != 1 || data.Notifications[0].Title != "Authentication Cancelled" {
		t.Fatalf("unexpected notifications %+v", data.Notifications)
	}
}

func TestCallbackStateMismatch(t *testing.T) {
	env := newTestEnv(t)
	flowID, _ := env.startFlow(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"forged","code":"auth-code"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCallbackUnknownFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/missing/callback",
		`{"state":"s","code":"c"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestFullSignupFlow(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)

	env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)

	resp := env.do(t, http.MethodPut, "/onboarding/flows/"+flowID+"/form", `{
		"role":"developer",
		"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com",
		"experience":"3-5","skills":"Go, Firestore","bio":"Building things."
	}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("form: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/submit", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	data := decodeFlow(t, resp)
	if data.State != "completed" {
		t.Fatalf("expected completed, got %s", data.State)
	}
	if len(data.Navigations) != 1 || data.Navigations[0].Target != "/" {
		t.Fatalf("unexpected navigations %+v", data.Navigations)
	}

	stored, err := env.store.Get(context.Background(), env.gw.Identity.ID, profile.RoleDeveloper)
	if err != nil {
		t.Fatalf("expected a stored profile: %v", err)
	}
	if profile.BaseOf(stored).DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected profile %+v", stored)
	}
}

func TestFormValidationFailureIs422(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)
	env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)

	resp := env.do(t, http.MethodPut, "/onboarding/flows/"+flowID+"/form", `{
		"role":"developer",
		"firstName":"  ","lastName":"Lovelace","email":"not-an-email",
		"experience":"3-5","skills":"Go","bio":"x"
	}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSubmitStoreFailureKeepsFlowAlive(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)
	env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)
	env.do(t, http.MethodPut, "/onboarding/flows/"+flowID+"/form", `{
		"role":"developer",
		"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com",
		"experience":"3-5","skills":"Go","bio":"Building."
	}`)

	env.store.FailNextWith(profile.NewStoreError(profile.StorePermissionDenied, "rules"))
	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/submit", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	data := decodeFlow(t, resp)
	if data.State != "form_active" {
		t.Fatalf("expected form_active, got %s", data.State)
	}
	if data.Failure != "store_permission_denied" {
		t.Fatalf("unexpected failure %q", data.Failure)
	}
	if len(data.Notifications) != 1 || data.Notifications[0].Title != "Session Expired" {
		t.Fatalf("unexpected notifications %+v", data.Notifications)
	}

	// The draft survived, so a retry succeeds.
	resp = env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/submit", "")
	if data := decodeFlow(t, resp); data.State != "completed" {
		t.Fatalf("expected completed on retry, got %s", data.State)
	}
}

func TestCancelFlow(t *testing.T) {
	env := newTestEnv(t)
	flowID, _ := env.startFlow(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/cancel", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	data := decodeFlow(t, resp)
	if data.State != "idle" || data.Failure != "user_cancelled" {
		t.Fatalf("unexpected snapshot %+v", data)
	}

	resp = env.do(t, http.MethodGet, "/onboarding/flows/"+flowID, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after cancel, got %d", resp.Code)
	}
}

func TestEnterFormWithoutSignInRedirects(t *testing.T) {
	env := newTestEnv(t)
	flowID, _ := env.startFlow(t)

	resp := env.do(t, http.MethodGet, "/onboarding/flows/"+flowID+"/form/developer", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	data := decodeFlow(t, resp)
	if len(data.Navigations) != 1 || data.Navigations[0].Target != "/auth/developer" {
		t.Fatalf("unexpected navigations %+v", data.Navigations)
	}
}

func TestFlowSurvivesHandlerRestart(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)

	// A second handler over the same session store stands in for a new
	// instance taking over mid-flow.
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("OnboardingTest", "test"))
	h := NewHandler(env.gw, profile.NewStoreResolver(env.store), env.store, env.sessions,
		WithNavigationDelay(0))
	Register(api, h)

	req := httptest.NewRequest(http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		strings.NewReader(`{"state":"`+state+`","code":"auth-code"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if data := decodeFlow(t, resp); data.State != "form_active" {
		t.Fatalf("expected form_active, got %s", data.State)
	}
}

func TestFlowSurvivesRestartAfterSignIn(t *testing.T) {
	env := newTestEnv(t)
	flowID, state := env.startFlow(t)

	resp := env.do(t, http.MethodPost, "/onboarding/flows/"+flowID+"/callback",
		`{"state":"`+state+`","code":"auth-code"}`)
	if data := decodeFlow(t, resp); data.State != "form_active" {
		t.Fatalf("callback: expected form_active, got %s", data.State)
	}

	// The identity is persisted with the session record, so a new instance
	// can carry the flow through form collection and submit.
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("OnboardingTest", "test"))
	h := NewHandler(env.gw, profile.NewStoreResolver(env.store), env.store, env.sessions,
		WithNavigationDelay(0))
	Register(api, h)

	req := httptest.NewRequest(http.MethodPut, "/onboarding/flows/"+flowID+"/form",
		strings.NewReader(`{
			"role":"developer",
			"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com",
			"experience":"3-5","skills":"Go, Firestore","bio":"Building things."
		}`))
	req.Header.Set("Content-Type", "application/json")
	formResp := httptest.NewRecorder()
	router.ServeHTTP(formResp, req)

	if formResp.Code != http.StatusOK {
		t.Fatalf("form: expected 200, got %d: %s", formResp.Code, formResp.Body.String())
	}
	data := decodeFlow(t, formResp)
	if data.State != "form_active" {
		t.Fatalf("form: expected form_active, got %s", data.State)
	}
	if data.Provider != "google" {
		t.Fatalf("form: expected google provider, got %q", data.Provider)
	}

	req = httptest.NewRequest(http.MethodPost, "/onboarding/flows/"+flowID+"/submit", nil)
	submitResp := httptest.NewRecorder()
	router.ServeHTTP(submitResp, req)

	if submitResp.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", submitResp.Code, submitResp.Body.String())
	}
	if data := decodeFlow(t, submitResp); data.State != "completed" {
		t.Fatalf("submit: expected completed, got %s", data.State)
	}
	if _, err := env.store.Get(context.Background(), env.gw.Identity.ID, profile.RoleDeveloper); err != nil {
		t.Fatalf("expected a stored profile: %v", err)
	}
}
