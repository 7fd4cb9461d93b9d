package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/founderbridge/onboarding/internal/identity"
)

const githubAPIBase = "https://api.github.com"

// GithubProvider signs users in through GitHub's OAuth2 flow. GitHub issues
// no ID token, so the user record and email come from its REST API.
type GithubProvider struct {
	oauthConfig *oauth2.Config
	apiBase     string
}

// NewGithubProvider prepares the GitHub flow.
func NewGithubProvider(clientID, clientSecret, redirectURL string) (*GithubProvider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &GithubProvider{
		apiBase: githubAPIBase,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}, nil
}

func (p *GithubProvider) authURL(state, _ string) string {
	// GitHub OAuth apps do not support PKCE; state alone binds the flow.
	return p.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (p *GithubProvider) exchange(ctx context.Context, code, _ string) (*identity.Identity, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}
	if user.ID == 0 {
		return nil, errors.New("github user record missing id")
	}

	email := user.Email
	if email == "" {
		// The public profile email is often unset; the emails endpoint
		// requires the user:email scope requested above.
		email, err = p.primaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}

	return &identity.Identity{
		ID:          fmt.Sprintf("github:%d", user.ID),
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   user.AvatarURL,
	}, nil
}

func (p *GithubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", fmt.Errorf("github emails fetch failed: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func (p *GithubProvider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
