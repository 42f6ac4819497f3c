package config

import (
	"fmt"
	"net/url"
	"strings"

	env "github.com/netflix/go-env"
	"github.com/ptit-ai/unirag/internal/types"
)

// Type alias for Config
type Config = types.Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe
// ranges. Invalid router tunables are rejected here, before any external
// call is made.
func validateConfig(config *Config) error {
	// Clamp retrieval size to the supported range
	if config.RetrievalTopK < 1 {
		config.RetrievalTopK = 1
	}
	if config.RetrievalTopK > 20 {
		config.RetrievalTopK = 20
	}

	if config.ConfidenceThreshold < 0 || config.ConfidenceThreshold > 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be between 0.0 and 1.0, got %f", config.ConfidenceThreshold)
	}
	if config.ScoreThreshold < 0 || config.ScoreThreshold > 1 {
		return fmt.Errorf("SCORE_THRESHOLD must be between 0.0 and 1.0, got %f", config.ScoreThreshold)
	}

	switch config.VectorBackend {
	case "opensearch":
		if err := validateOpenSearchConfig(config); err != nil {
			return fmt.Errorf("OpenSearch configuration validation failed: %w", err)
		}
	case "s3vectors":
		if config.S3VectorBucket == "" {
			return fmt.Errorf("S3_VECTOR_BUCKET is required when VECTOR_BACKEND=s3vectors")
		}
	default:
		return fmt.Errorf("invalid VECTOR_BACKEND %q: valid backends are opensearch, s3vectors", config.VectorBackend)
	}

	switch config.GenerationProvider {
	case "bedrock":
	case "gemini":
		if config.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when GENERATION_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("invalid GENERATION_PROVIDER %q: valid providers are bedrock, gemini", config.GenerationProvider)
	}

	if err := validateWebSearchConfig(config); err != nil {
		return fmt.Errorf("web search configuration validation failed: %w", err)
	}

	if config.ServerPort < 1 || config.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", config.ServerPort)
	}

	return nil
}

// validateOpenSearchConfig validates OpenSearch-specific configuration
func validateOpenSearchConfig(config *Config) error {
	if config.OpenSearchEndpoint == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT is required when VECTOR_BACKEND=opensearch")
	}

	parsedURL, err := url.Parse(config.OpenSearchEndpoint)
	if err != nil {
		return fmt.Errorf("invalid OPENSEARCH_ENDPOINT URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include scheme (http:// or https://)")
	}

	if !strings.HasPrefix(parsedURL.Scheme, "http") {
		return fmt.Errorf("OPENSEARCH_ENDPOINT scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include a valid host")
	}

	if config.OpenSearchRegion == "" {
		return fmt.Errorf("OPENSEARCH_REGION is required when VECTOR_BACKEND=opensearch")
	}

	if config.OpenSearchRateLimit <= 0 {
		return fmt.Errorf("OPENSEARCH_RATE_LIMIT must be greater than 0")
	}
	if config.OpenSearchRateLimit > 1000 {
		return fmt.Errorf("OPENSEARCH_RATE_LIMIT cannot exceed 1000 requests/second")
	}

	if config.OpenSearchRateBurst <= 0 {
		return fmt.Errorf("OPENSEARCH_RATE_BURST must be greater than 0")
	}

	if config.OpenSearchConnectionTimeout <= 0 {
		return fmt.Errorf("OPENSEARCH_CONNECTION_TIMEOUT must be greater than 0")
	}
	if config.OpenSearchRequestTimeout <= 0 {
		return fmt.Errorf("OPENSEARCH_REQUEST_TIMEOUT must be greater than 0")
	}

	if config.OpenSearchMaxRetries < 0 {
		return fmt.Errorf("OPENSEARCH_MAX_RETRIES cannot be negative")
	}
	if config.OpenSearchMaxRetries > 10 {
		return fmt.Errorf("OPENSEARCH_MAX_RETRIES cannot exceed 10")
	}

	return nil
}

// validateWebSearchConfig validates the optional web search collaborator
// configuration. Web search being misconfigured only disables the feature
// when it was never requested; an explicitly enabled provider without an API
// key is a hard error.
func validateWebSearchConfig(config *Config) error {
	if !config.WebSearchEnabled && !config.WebSearchFallback {
		return nil
	}

	if config.WebSearchEnabled && config.WebSearchAPIKey == "" {
		return fmt.Errorf("WEB_SEARCH_API_KEY is required when WEB_SEARCH_ENABLED=true")
	}

	if config.WebSearchEndpoint != "" {
		parsed, err := url.Parse(config.WebSearchEndpoint)
		if err != nil {
			return fmt.Errorf("invalid WEB_SEARCH_ENDPOINT: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("WEB_SEARCH_ENDPOINT must be an absolute http(s) URL")
		}
	}

	if config.WebSearchMaxResults < 1 {
		config.WebSearchMaxResults = 1
	}
	if config.WebSearchMaxResults > 10 {
		config.WebSearchMaxResults = 10
	}

	if config.WebSearchTimeout <= 0 {
		return fmt.Errorf("WEB_SEARCH_TIMEOUT must be greater than 0")
	}

	return nil
}
