package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
)

// allConfigKeys lists every GHLINK_ env var that Load() reads.
var allConfigKeys = []string{
	"GHLINK_GITHUB_CLIENT_ID",
	"GHLINK_GITHUB_CLIENT_SECRET",
	"GHLINK_GITHUB_REDIRECT_URI",
	"GHLINK_GITHUB_TIMEOUT",
	"GHLINK_REAUTH_POLICY",
	"GHLINK_SECRET_KEY",
	"GHLINK_CORS_ORIGINS",
	"GHLINK_LISTEN_ADDR",
	"GHLINK_DB_PATH",
}

const testSecretKey = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"

// isolateConfigEnv saves and unsets all GHLINK_ env vars so tests don't
// inherit values from the host environment. The working directory is moved
// to an empty temp dir so a developer's .env is never picked up.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GHLINK_GITHUB_CLIENT_ID", "Iv1.client")
	t.Setenv("GHLINK_GITHUB_CLIENT_SECRET", "shh")
	t.Setenv("GHLINK_GITHUB_REDIRECT_URI", "http://localhost:3000/api/github/callback")
	t.Setenv("GHLINK_SECRET_KEY", testSecretKey)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	t.Setenv("GHLINK_GITHUB_TIMEOUT", "5s")
	t.Setenv("GHLINK_REAUTH_POLICY", "reject")
	t.Setenv("GHLINK_CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("GHLINK_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("GHLINK_DB_PATH", "/tmp/test.db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "Iv1.client", cfg.GitHubClientID)
	assert.Equal(t, "shh", cfg.GitHubClientSecret)
	assert.Equal(t, "http://localhost:3000/api/github/callback", cfg.GitHubRedirectURI)
	assert.Equal(t, 5*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, model.ReauthReject, cfg.ReauthPolicy)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Len(t, cfg.SecretKey, 32)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, model.ReauthReplace, cfg.ReauthPolicy)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "127.0.0.1:3000", cfg.ListenAddr)
	assert.Equal(t, "ghlink.db", cfg.DBPath)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{
		"GHLINK_GITHUB_CLIENT_ID",
		"GHLINK_GITHUB_CLIENT_SECRET",
		"GHLINK_GITHUB_REDIRECT_URI",
		"GHLINK_SECRET_KEY",
	} {
		t.Run(key, func(t *testing.T) {
			isolateConfigEnv(t)
			setRequired(t)
			os.Unsetenv(key)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	t.Setenv("GHLINK_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHLINK_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	// 64 chars but not valid hex
	t.Setenv("GHLINK_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHLINK_SECRET_KEY")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	t.Setenv("GHLINK_GITHUB_TIMEOUT", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHLINK_GITHUB_TIMEOUT")
}

func TestLoad_InvalidReauthPolicy(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	t.Setenv("GHLINK_REAUTH_POLICY", "merge")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHLINK_REAUTH_POLICY")
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateConfigEnv(t)
	setRequired(t)
	os.Unsetenv("GHLINK_GITHUB_CLIENT_ID")
	t.Cleanup(func() { os.Unsetenv("GHLINK_GITHUB_CLIENT_ID") })

	require.NoError(t, os.WriteFile(".env", []byte("GHLINK_GITHUB_CLIENT_ID=from-dotenv\n"), 0o600))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.GitHubClientID)
}
