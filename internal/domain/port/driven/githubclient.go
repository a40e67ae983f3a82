package driven

import (
	"context"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
)

// GitHubClient defines the driven port for the GitHub OAuth endpoints and
// REST API. Implementations are stateless: every call is a single round trip
// with no retry and no caching, and upstream failures are returned as errors.
type GitHubClient interface {
	// AuthorizationURL builds the OAuth authorize URL. An empty redirectURI
	// selects the registered callback. No network call is made.
	AuthorizationURL(redirectURI string) string

	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchIdentity returns the user the token authenticates as.
	FetchIdentity(ctx context.Context, token string) (model.Identity, error)

	// RevokeToken invalidates token upstream using client credentials.
	RevokeToken(ctx context.Context, token string) error

	// Get performs an authenticated GET of a REST path relative to the API
	// base URL and returns the response body exactly as received.
	Get(ctx context.Context, token, path string) ([]byte, error)
}
