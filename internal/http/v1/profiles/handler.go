// Package profiles exposes stored profile reads for authenticated users.
package profiles

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/founderbridge/onboarding/internal/platform/auth"
	"github.com/founderbridge/onboarding/internal/profile"
)

// GetInput selects which role partition to read.
type GetInput struct {
	Role string `path:"role" doc:"Profile role" enum:"developer,recruiter" example:"developer"`
}

// GetOutput wraps the profile response.
type GetOutput struct {
	Body ProfileView
}

// Register registers profile endpoints.
func Register(api huma.API, store profile.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "get-my-profile",
		Method:      http.MethodGet,
		Path:        "/profiles/{role}/me",
		Summary:     "Get the authenticated user's profile",
		Description: "Reads the caller's profile from the given role partition.",
		Tags:        []string{"Profiles"},
		Security: []map[string][]string{
			{"bearerAuth": {}},
		},
	}, func(ctx context.Context, input *GetInput) (*GetOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := store.Get(ctx, user.UID, profile.Role(input.Role))
		if err != nil {
			return nil, mapStoreError(err)
		}
		return &GetOutput{Body: toProfileView(p)}, nil
	})
}

func mapStoreError(err error) error {
	if errors.Is(err, profile.ErrNotFound) {
		return huma.Error404NotFound("profile not found")
	}
	switch profile.StoreKindOf(err) {
	case profile.StoreUnauthenticated:
		return huma.Error401Unauthorized("please sign in again")
	case profile.StorePermissionDenied:
		return huma.Error403Forbidden("not allowed")
	case profile.StoreUnavailable:
		return huma.Error503ServiceUnavailable("profile storage is temporarily unavailable")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
