package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
PORT: "9000"
LLM_PROVIDER: gemini
GEMINI_MODEL: gemini-test
LLM_CACHE_ENABLED: true
LLM_CACHE_TTL_HOURS: 24
AWS_S3_BUCKET: receipts
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
	assert.True(t, cfg.LLMCacheEnabled)
	assert.Equal(t, 24*time.Hour, cfg.LLMCacheTTL())
	assert.True(t, cfg.S3Enabled())
	assert.False(t, cfg.MailEnabled())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, 168*time.Hour, cfg.LLMCacheTTL())
	assert.Equal(t, 7, cfg.RecipeRetentionDays)
	assert.Equal(t, time.Hour, cfg.JanitorInterval())
	assert.Equal(t, 2, cfg.LLMMaxRetries)
}

func TestLoadConfig_NegativeRetriesDisable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LLM_MAX_RETRIES: -1\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLMMaxRetries)
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LLM_PROVIDER: openai\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
