package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/founderbridge/onboarding/internal/common"
	"github.com/founderbridge/onboarding/internal/config"
	"github.com/founderbridge/onboarding/internal/gateway"
	"github.com/founderbridge/onboarding/internal/http/health"
	onboardinghttp "github.com/founderbridge/onboarding/internal/http/v1/onboarding"
	"github.com/founderbridge/onboarding/internal/http/v1/routes"
	appmiddleware "github.com/founderbridge/onboarding/internal/middleware"
	"github.com/founderbridge/onboarding/internal/platform/auth"
	fb "github.com/founderbridge/onboarding/internal/platform/firebase"
	applog "github.com/founderbridge/onboarding/internal/platform/logging"
	"github.com/founderbridge/onboarding/internal/profile"
	"github.com/founderbridge/onboarding/internal/respond"
	"github.com/founderbridge/onboarding/internal/session"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		if err := common.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := common.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(ctx, "configuration error", err)
	}

	clients, err := fb.InitializeClients(ctx, fb.Config{
		ProjectID:                    cfg.FirebaseProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
	})
	if err != nil {
		applog.LogFatal(ctx, "firebase initialization failed", err)
	}
	defer func() {
		if err := clients.Close(); err != nil {
			applog.LogError(context.Background(), "firestore close error", err)
		}
	}()

	gw, err := buildGateway(ctx, cfg)
	if err != nil {
		applog.LogFatal(ctx, "identity gateway initialization failed", err)
	}

	store := profile.NewFirestoreStore(clients.Firestore)
	resolver := profile.NewStoreResolver(store)
	sessions := buildSessionStore(ctx, cfg)
	flows := onboardinghttp.NewHandler(gw, resolver, store, sessions)
	verifier := auth.NewFirebaseVerifier(clients.Auth)

	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.AllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		chimiddleware.RealIP,
		// RequestSize limits request body size to prevent memory exhaustion.
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler)

	humaCfg := huma.DefaultConfig("FounderBridge Onboarding API", Version)
	humaCfg.DocsPath = "/api-docs"
	api := humachi.New(router, humaCfg)

	// Add CBOR content type to OpenAPI requests and responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, verifier, flows, store)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// buildGateway configures whichever providers have credentials. Starting with
// no providers at all is a configuration error.
func buildGateway(ctx context.Context, cfg config.Config) (*gateway.OAuthGateway, error) {
	var google *gateway.GoogleProvider
	var github *gateway.GithubProvider
	var err error

	if cfg.GoogleClientID != "" {
		google, err = gateway.NewGoogleProvider(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return nil, err
		}
	}
	if cfg.GithubClientID != "" {
		github, err = gateway.NewGithubProvider(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubRedirectURL)
		if err != nil {
			return nil, err
		}
	}
	if google == nil && github == nil {
		return nil, errors.New("no identity provider credentials configured")
	}
	return gateway.New(google, github), nil
}

// buildSessionStore uses Redis when configured and falls back to the
// in-process store for single-instance deployments.
func buildSessionStore(ctx context.Context, cfg config.Config) session.Store {
	if cfg.RedisAddr == "" {
		applog.LogInfo(ctx, "using in-memory flow session store")
		return session.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	applog.LogInfo(ctx, "using redis flow session store", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client)
}
