package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.InDelta(t, 0.2, cfg.Search.SimilarityThreshold, 1e-9)
	assert.Equal(t, 8*time.Second, cfg.Search.AdapterTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 1536, cfg.OpenAI.EmbeddingDimensions)
	assert.False(t, cfg.OpenAIConfigured())
	assert.Error(t, cfg.ValidateOpenAI())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"9090\"\nsearch:\n  default_limit: 20\n  adapter_timeout: 3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEARCH_SIMILARITY_THRESHOLD", "0.5")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 3*time.Second, cfg.Search.AdapterTimeout)
	assert.InDelta(t, 0.5, cfg.Search.SimilarityThreshold, 1e-9)
	assert.True(t, cfg.OpenAIConfigured())
	assert.NoError(t, cfg.ValidateOpenAI())
}

func TestLoad_RejectsInvalidSearchSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("search:\n  default_limit: 500\n"), 0o644))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}
