package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VECTOR_BACKEND", "opensearch")
	t.Setenv("OPENSEARCH_ENDPOINT", "https://search.example.com")
	t.Setenv("OPENSEARCH_REGION", "us-east-1")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "opensearch", cfg.VectorBackend)
	require.Equal(t, "unirag-kb", cfg.DefaultCollection)
	require.Equal(t, 5, cfg.RetrievalTopK)
	require.Equal(t, 0.6, cfg.ConfidenceThreshold)
	require.Equal(t, "bedrock", cfg.GenerationProvider)
	require.False(t, cfg.WebSearchEnabled)
	require.True(t, cfg.WebSearchFallback)
	require.Equal(t, 8080, cfg.ServerPort)
}

func TestLoadRequiresOpenSearchEndpoint(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "opensearch")
	t.Setenv("OPENSEARCH_ENDPOINT", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENSEARCH_ENDPOINT")
}

func TestLoadRejectsBadEndpointScheme(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OPENSEARCH_ENDPOINT", "ftp://search.example.com")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadS3VectorsBackend(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "s3vectors")
	t.Setenv("S3_VECTOR_BUCKET", "university-vectors")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3vectors", cfg.VectorBackend)

	t.Setenv("S3_VECTOR_BUCKET", "")
	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "S3_VECTOR_BUCKET")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "pinecone")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "VECTOR_BACKEND")
}

func TestLoadClampsTopK(t *testing.T) {
	setValidEnv(t)
	t.Setenv("RETRIEVAL_TOP_K", "50")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.RetrievalTopK)

	t.Setenv("RETRIEVAL_TOP_K", "0")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 1, cfg.RetrievalTopK)
}

func TestLoadRejectsThresholdOutOfRange(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CONFIDENCE_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "CONFIDENCE_THRESHOLD")

	t.Setenv("CONFIDENCE_THRESHOLD", "0.6")
	t.Setenv("SCORE_THRESHOLD", "-0.1")
	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SCORE_THRESHOLD")
}

func TestLoadGeminiProviderRequiresKey(t *testing.T) {
	setValidEnv(t)
	t.Setenv("GENERATION_PROVIDER", "gemini")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GEMINI_API_KEY")

	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.GenerationProvider)
}

func TestLoadWebSearchEnabledRequiresKey(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WEB_SEARCH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "WEB_SEARCH_API_KEY")

	t.Setenv("WEB_SEARCH_API_KEY", "tvly-test")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.WebSearchEnabled)
}

func TestLoadClampsWebSearchMaxResults(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WEB_SEARCH_API_KEY", "tvly-test")
	t.Setenv("WEB_SEARCH_MAX_RESULTS", "25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.WebSearchMaxResults)
}

func TestLoadRejectsBadServerPort(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SERVER_PORT")
}
