// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
	GitHubTimeout      time.Duration
	ReauthPolicy       model.ReauthPolicy
	SecretKey          []byte // 32-byte AES-256 key for access tokens at rest.
	CORSOrigins        []string
	ListenAddr         string
	DBPath             string
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
//
// Required: GHLINK_GITHUB_CLIENT_ID, GHLINK_GITHUB_CLIENT_SECRET,
// GHLINK_GITHUB_REDIRECT_URI, GHLINK_SECRET_KEY (64 hex chars).
// Optional variables with defaults: GHLINK_LISTEN_ADDR (127.0.0.1:3000),
// GHLINK_DB_PATH (ghlink.db), GHLINK_CORS_ORIGINS (*),
// GHLINK_GITHUB_TIMEOUT (30s), GHLINK_REAUTH_POLICY (replace).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	clientID, err := required("GHLINK_GITHUB_CLIENT_ID")
	if err != nil {
		return nil, err
	}
	clientSecret, err := required("GHLINK_GITHUB_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}
	redirectURI, err := required("GHLINK_GITHUB_REDIRECT_URI")
	if err != nil {
		return nil, err
	}

	rawKey, err := required("GHLINK_SECRET_KEY")
	if err != nil {
		return nil, err
	}
	secretKey, err := hex.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("GHLINK_SECRET_KEY must be hex encoded: %w", err)
	}
	if len(secretKey) != 32 {
		return nil, fmt.Errorf("GHLINK_SECRET_KEY must decode to 32 bytes, got %d", len(secretKey))
	}

	timeout := 30 * time.Second
	if v, ok := os.LookupEnv("GHLINK_GITHUB_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GHLINK_GITHUB_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GHLINK_GITHUB_TIMEOUT must be positive, got %s", parsed)
		}
		timeout = parsed
	}

	policy := model.ReauthReplace
	if v, ok := os.LookupEnv("GHLINK_REAUTH_POLICY"); ok && v != "" {
		policy = model.ReauthPolicy(strings.ToLower(strings.TrimSpace(v)))
		if !policy.Valid() {
			return nil, fmt.Errorf("GHLINK_REAUTH_POLICY must be %q or %q, got %q", model.ReauthReplace, model.ReauthReject, v)
		}
	}

	listenAddr := "127.0.0.1:3000"
	if v, ok := os.LookupEnv("GHLINK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ghlink.db"
	if v, ok := os.LookupEnv("GHLINK_DB_PATH"); ok {
		dbPath = v
	}

	corsOrigins := []string{"*"}
	if v, ok := os.LookupEnv("GHLINK_CORS_ORIGINS"); ok && v != "" {
		corsOrigins = corsOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				corsOrigins = append(corsOrigins, origin)
			}
		}
	}

	return &Config{
		GitHubClientID:     clientID,
		GitHubClientSecret: clientSecret,
		GitHubRedirectURI:  redirectURI,
		GitHubTimeout:      timeout,
		ReauthPolicy:       policy,
		SecretKey:          secretKey,
		CORSOrigins:        corsOrigins,
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
	}, nil
}

func required(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
