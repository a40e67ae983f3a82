// Package github implements the GitHubClient port using golang.org/x/oauth2
// for the OAuth endpoints and the go-github library for the REST API.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// DefaultScopes grants repository read and organization read access.
var DefaultScopes = []string{"repo", "read:org"}

const defaultTimeout = 30 * time.Second

// Config holds the OAuth app registration and transport settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Scopes defaults to DefaultScopes.
	Scopes []string

	// Timeout bounds each upstream call whose context has no deadline (default: 30s).
	Timeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// APIBaseURL, AuthURL and TokenURL override the public GitHub endpoints.
	// They are empty in production and point at an httptest server in tests.
	APIBaseURL string
	AuthURL    string
	TokenURL   string
}

// Client implements the driven.GitHubClient port. It holds no per-user state;
// the bearer token is supplied on every call.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	api        *gh.Client // unauthenticated; WithAuthToken derives per-call clients.
	app        *gh.Client // basic auth with client_id:client_secret for /applications.
	clientID   string
	timeout    time.Duration
}

// NewClient creates a GitHub client for the given OAuth app.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	scopes = append([]string(nil), scopes...)

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	// GitHub accepts client credentials in the form body; pinning the style
	// avoids the auto-detect round trip.
	endpoint := oauthgithub.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	api := gh.NewClient(httpClient)
	app := gh.NewClient(&http.Client{
		Transport: &gh.BasicAuthTransport{
			Username:  cfg.ClientID,
			Password:  cfg.ClientSecret,
			Transport: httpClient.Transport,
		},
		Timeout: httpClient.Timeout,
	})

	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing API base URL: %w", err)
		}
		api.BaseURL = u
		app.BaseURL = u
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
		api:        api,
		app:        app,
		clientID:   cfg.ClientID,
		timeout:    timeout,
	}, nil
}

// AuthorizationURL returns the GitHub authorize URL carrying the client ID,
// redirect URI and scopes. An empty redirectURI keeps the configured callback.
func (c *Client) AuthorizationURL(redirectURI string) string {
	cfg := *c.oauth
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	return cfg.AuthCodeURL("")
}

// ExchangeCode trades an authorization code for an access token at the
// GitHub token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("exchanging authorization code: empty access token")
	}

	return token.AccessToken, nil
}

// FetchIdentity returns the ID and login of the user token authenticates as.
func (c *Client) FetchIdentity(ctx context.Context, token string) (model.Identity, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	user, _, err := c.api.WithAuthToken(token).Users.Get(ctx, "")
	if err != nil {
		return model.Identity{}, fmt.Errorf("fetching authenticated user: %w", err)
	}
	if user.GetID() == 0 || user.GetLogin() == "" {
		return model.Identity{}, errors.New("fetching authenticated user: response missing id or login")
	}

	return model.Identity{
		ID:    strconv.FormatInt(user.GetID(), 10),
		Login: user.GetLogin(),
	}, nil
}

// RevokeToken deletes token via DELETE /applications/{client_id}/token,
// authenticating with the app's client credentials.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	// go-github turns any non-2xx response into an *gh.ErrorResponse.
	if _, err := c.app.Authorizations.Revoke(ctx, c.clientID, token); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	return nil
}

// Get performs an authenticated GET of path (relative to the API base URL)
// and returns the body bytes as received.
func (c *Client) Get(ctx context.Context, token, path string) ([]byte, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	client := c.api.WithAuthToken(token)

	req, err := client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	var body bytes.Buffer
	if _, err := client.Do(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	return body.Bytes(), nil
}

// ensureContextTimeout adds the configured timeout when ctx has no deadline.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
