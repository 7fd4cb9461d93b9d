// Package routes wires the v1 API surface.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	onboardinghttp "github.com/founderbridge/onboarding/internal/http/v1/onboarding"
	"github.com/founderbridge/onboarding/internal/http/v1/profiles"
	"github.com/founderbridge/onboarding/internal/platform/auth"
	"github.com/founderbridge/onboarding/internal/profile"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	verifier auth.Verifier,
	flows *onboardinghttp.Handler,
	store profile.Store,
) {
	registerSecurityScheme(api)

	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	onboardinghttp.Register(api, flows)
	profiles.Register(api, store)
}

func registerSecurityScheme(api huma.API) {
	oapi := api.OpenAPI()
	if oapi.Components == nil {
		oapi.Components = &huma.Components{}
	}
	if oapi.Components.SecuritySchemes == nil {
		oapi.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oapi.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
}
