package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid bearer", "Bearer abc123", "abc123", nil},
		{"case insensitive scheme", "bearer abc123", "abc123", nil},
		{"missing header", "", "", ErrNoToken},
		{"wrong scheme", "Basic abc123", "", ErrInvalidToken},
		{"no token", "Bearer", "", ErrInvalidToken},
		{"extra parts", "Bearer a b", "", ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tc.header)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("expected token %q, got %q", tc.want, got)
			}
		})
	}
}

type echoOutput struct {
	Body struct {
		UID string `json:"uid"`
	}
}

func newAuthTestRouter(verifier Verifier) chi.Router {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("AuthTest", "test"))
	api.UseMiddleware(NewAuthMiddleware(api, verifier))

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, _ *struct{}) (*echoOutput, error) {
		out := &echoOutput{}
		out.Body.UID = UserFromContext(ctx).UID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "open",
		Method:      http.MethodGet,
		Path:        "/open",
	}, func(ctx context.Context, _ *struct{}) (*echoOutput, error) {
		return &echoOutput{}, nil
	})

	return router
}

func TestAuthMiddlewareAllowsValidToken(t *testing.T) {
	router := newAuthTestRouter(&MockVerifier{User: TestUser()})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router := newAuthTestRouter(&MockVerifier{User: TestUser()})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if got := resp.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer, got %q", got)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired", ErrTokenExpired, http.StatusUnauthorized},
		{"revoked", ErrTokenRevoked, http.StatusUnauthorized},
		{"disabled user", ErrUserDisabled, http.StatusUnauthorized},
		{"invalid", ErrInvalidToken, http.StatusUnauthorized},
		{"certificate fetch failure", ErrCertificateFetch, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthTestRouter(&MockVerifier{Error: tc.err})

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestAuthMiddlewareSkipsUnprotectedOperations(t *testing.T) {
	router := newAuthTestRouter(&MockVerifier{Error: ErrInvalidToken})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without security requirements, got %d", resp.Code)
	}
}

func TestUserFromContextWithoutUser(t *testing.T) {
	if UserFromContext(context.Background()) != nil {
		t.Fatal("expected nil without an authenticated user")
	}
}
