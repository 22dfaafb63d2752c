package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/website-catalogue/internal/config"
)

func requiredVars() map[string]string {
	return map[string]string{
		"HASHED_PASSWORD": "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		"FORM_PASSWORD":   "confirm",
		"GITHUB_KEY":      "ghp_token",
		"GITHUB_REPO":     "someone/website",
		"TMDB_KEY":        "tmdb",
		"IGDB_KEY":        "igdb-secret",
		"IGDB_CLIENT":     "igdb-client",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(requiredVars())
	require.NoError(t, err)

	assert.Equal(t, config.Local, cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "content", cfg.ContentPrefix)
	assert.False(t, cfg.GitHubDryRun)
	assert.False(t, cfg.Production())

	owner, name, err := cfg.Repo()
	require.NoError(t, err)
	assert.Equal(t, "someone", owner)
	assert.Equal(t, "website", name)
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	for _, key := range []string{"HASHED_PASSWORD", "FORM_PASSWORD", "GITHUB_KEY", "GITHUB_REPO", "TMDB_KEY", "IGDB_KEY", "IGDB_CLIENT"} {
		t.Run(key, func(t *testing.T) {
			vars := requiredVars()
			delete(vars, key)
			_, err := config.LoadFrom(vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"repo_without_owner", "GITHUB_REPO", "website"},
		{"repo_too_deep", "GITHUB_REPO", "a/b/c"},
		{"unknown_env", "ENV", "staging"},
		{"zero_timeout", "OUTBOUND_TIMEOUT", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := requiredVars()
			vars[tt.key] = tt.value
			_, err := config.LoadFrom(vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	vars := requiredVars()
	vars["ENV"] = "production"
	vars["LOG_LEVEL"] = "debug"
	vars["ALLOWED_ORIGINS"] = "https://example.org,https://www.example.org"
	vars["GITHUB_DRY_RUN"] = "true"

	cfg, err := config.LoadFrom(vars)
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://example.org", "https://www.example.org"}, cfg.AllowedOrigins)
	assert.True(t, cfg.GitHubDryRun)
}
