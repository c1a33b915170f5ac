// Package auth implements Google OAuth2 sign-in for YouTube access.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// YouTubeReadonlyScope grants read access to the account's YouTube data.
	YouTubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

	// CallbackPath is the path the local callback server listens on.
	CallbackPath = "/callback"
)

// DefaultScopes are the scopes vibe requests.
var DefaultScopes = []string{YouTubeReadonlyScope}

// Config holds the OAuth client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Endpoint overrides Google's endpoints, for tests.
	Endpoint *oauth2.Endpoint
}

// NewConfig creates an OAuth configuration for a local callback on port.
func NewConfig(clientID, clientSecret string, port int) *Config {
	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  fmt.Sprintf("http://127.0.0.1:%d%s", port, CallbackPath),
		Scopes:       DefaultScopes,
	}
}

// OAuth2 returns the equivalent oauth2.Config.
func (c *Config) OAuth2() *oauth2.Config {
	ep := endpoints.Google
	if c.Endpoint != nil {
		ep = *c.Endpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
		Endpoint:     ep,
	}
}

// AuthURL builds the consent URL for pkce. Offline access is requested so
// the token can be refreshed without signing in again.
func (c *Config) AuthURL(pkce *PKCE) string {
	return c.OAuth2().AuthCodeURL(pkce.State,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(pkce.Verifier),
	)
}

// Exchange trades an authorization code for a token.
func (c *Config) Exchange(ctx context.Context, code, verifier string) (*Token, error) {
	tok, err := c.OAuth2().Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return FromOAuth2(tok), nil
}
