package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docuchat-be/types"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
provider: openai
model: gpt-4o-mini
embedding_model: text-embedding-3-small
weaviate_store_config:
  host: localhost:8080
  collection: documents
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "user_uploaded_files", cfg.UploadDir)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 0, cfg.ChunkOverlap)
	assert.Equal(t, 4, cfg.RetrievalK)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, 3000, cfg.MaxPromptTokens)
	assert.Equal(t, "webapp_completed_files", cfg.Archive.Prefix)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
provider: openai
model: gpt-4o-mini
embedding_model: text-embedding-3-small
chunk_size: 800
chunk_overlap: 100
retrieval_k: 6
weaviate_store_config:
  host: localhost:8080
  collection: documents
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 6, cfg.RetrievalK)
}

func TestLoadConfigMissingStoreParameters(t *testing.T) {
	path := writeConfigFile(t, `
provider: openai
model: gpt-4o-mini
embedding_model: text-embedding-3-small
`)

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "weaviate_store_config.host")
	assert.Contains(t, err.Error(), "weaviate_store_config.collection")
}

func TestLoadConfigMissingEmbeddingModel(t *testing.T) {
	path := writeConfigFile(t, `
provider: openai
model: gpt-4o-mini
weaviate_store_config:
  host: localhost:8080
  collection: documents
`)

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "embedding_model")
}

func TestLoadConfigUnknownProvider(t *testing.T) {
	path := writeConfigFile(t, `
provider: acme
embedding_model: text-embedding-3-small
weaviate_store_config:
  host: localhost:8080
  collection: documents
`)

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestLoadConfigGeminiNeedsKeys(t *testing.T) {
	path := writeConfigFile(t, `
provider: gemini
model: gemini-2.0-flash
embedding_model: text-embedding-3-small
weaviate_store_config:
  host: localhost:8080
  collection: documents
`)

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "GEMINI_API_KEYS")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
