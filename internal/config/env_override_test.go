package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var overrideVars = []string{
	"GEMINI_API_KEY", "GOOGLE_API_KEY", "IDEAFORGE_MODEL",
	"SERPAPI_API_KEY", "ADZUNA_APP_ID", "ADZUNA_APP_KEY", "BLS_API_KEY",
	"IDEAFORGE_DB", "IDEAFORGE_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range overrideVars {
		t.Setenv(v, "")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("IDEAFORGE_MODEL", "gemini-2.5-pro")
	t.Setenv("SERPAPI_API_KEY", "serp")
	t.Setenv("ADZUNA_APP_ID", "adz-id")
	t.Setenv("ADZUNA_APP_KEY", "adz-key")
	t.Setenv("BLS_API_KEY", "bls")
	t.Setenv("IDEAFORGE_DB", "/tmp/x.db")
	t.Setenv("IDEAFORGE_ADDR", ":7000")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "google", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "serp", cfg.Fetchers.Trends.APIKey)
	assert.Equal(t, "adz-id", cfg.Fetchers.Jobs.AppID)
	assert.Equal(t, "adz-key", cfg.Fetchers.Jobs.APIKey)
	assert.Equal(t, "bls", cfg.Fetchers.Workforce.APIKey)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestApplyEnvOverrides_GeminiKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	assert.Equal(t, "gemini", cfg.LLM.APIKey)
}

func TestApplyEnvOverrides_EmptyLeavesFileValues(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "from-file"
	cfg.applyEnvOverrides()
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}
