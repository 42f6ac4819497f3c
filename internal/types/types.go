package types

import (
	"fmt"
	"time"
)

// Config represents the unirag application configuration loaded from the
// environment.
type Config struct {
	// Vector store configuration
	VectorBackend    string `json:"vector_backend" env:"VECTOR_BACKEND,default=opensearch"`
	DefaultCollection string `json:"default_collection" env:"DEFAULT_COLLECTION,default=unirag-kb"`

	// AWS / Bedrock configuration
	AWSRegion      string `json:"aws_region" env:"AWS_REGION,default=us-east-1"`
	EmbeddingModel string `json:"embedding_model" env:"EMBEDDING_MODEL,default=amazon.titan-embed-text-v2:0"`
	ChatModel      string `json:"chat_model" env:"CHAT_MODEL,default=anthropic.claude-3-5-sonnet-20240620-v1:0"`

	// Alternate generation provider (Gemini). Used when GENERATION_PROVIDER=gemini.
	GenerationProvider string `json:"generation_provider" env:"GENERATION_PROVIDER,default=bedrock"`
	GeminiAPIKey       string `json:"-" env:"GEMINI_API_KEY"`
	GeminiModel        string `json:"gemini_model" env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	// S3 Vectors backend
	S3VectorBucket string `json:"s3_vector_bucket" env:"S3_VECTOR_BUCKET"`
	S3VectorRegion string `json:"s3_vector_region" env:"S3_VECTOR_REGION,default=us-east-1"`

	// OpenSearch backend
	OpenSearchEndpoint          string        `json:"opensearch_endpoint" env:"OPENSEARCH_ENDPOINT"`
	OpenSearchRegion            string        `json:"opensearch_region" env:"OPENSEARCH_REGION,default=us-east-1"`
	OpenSearchInsecureSkipTLS   bool          `json:"opensearch_insecure_skip_tls" env:"OPENSEARCH_INSECURE_SKIP_TLS,default=false"`
	OpenSearchRateLimit         float64       `json:"opensearch_rate_limit" env:"OPENSEARCH_RATE_LIMIT,default=10.0"`
	OpenSearchRateBurst         int           `json:"opensearch_rate_burst" env:"OPENSEARCH_RATE_BURST,default=20"`
	OpenSearchConnectionTimeout time.Duration `json:"opensearch_connection_timeout" env:"OPENSEARCH_CONNECTION_TIMEOUT,default=30s"`
	OpenSearchRequestTimeout    time.Duration `json:"opensearch_request_timeout" env:"OPENSEARCH_REQUEST_TIMEOUT,default=60s"`
	OpenSearchMaxRetries        int           `json:"opensearch_max_retries" env:"OPENSEARCH_MAX_RETRIES,default=3"`
	OpenSearchRetryDelay        time.Duration `json:"opensearch_retry_delay" env:"OPENSEARCH_RETRY_DELAY,default=1s"`
	OpenSearchMaxConnections    int           `json:"opensearch_max_connections" env:"OPENSEARCH_MAX_CONNECTIONS,default=100"`
	OpenSearchMaxIdleConns      int           `json:"opensearch_max_idle_conns" env:"OPENSEARCH_MAX_IDLE_CONNS,default=10"`
	OpenSearchIdleConnTimeout   time.Duration `json:"opensearch_idle_conn_timeout" env:"OPENSEARCH_IDLE_CONN_TIMEOUT,default=90s"`

	// Router configuration
	RetrievalTopK       int     `json:"retrieval_top_k" env:"RETRIEVAL_TOP_K,default=5"`
	ScoreThreshold      float64 `json:"score_threshold" env:"SCORE_THRESHOLD,default=0.0"`
	ConfidenceThreshold float64 `json:"confidence_threshold" env:"CONFIDENCE_THRESHOLD,default=0.6"`

	// Web search configuration
	WebSearchEnabled    bool          `json:"web_search_enabled" env:"WEB_SEARCH_ENABLED,default=false"`
	WebSearchFallback   bool          `json:"web_search_fallback" env:"WEB_SEARCH_FALLBACK,default=true"`
	WebSearchAPIKey     string        `json:"-" env:"WEB_SEARCH_API_KEY"`
	WebSearchEndpoint   string        `json:"web_search_endpoint" env:"WEB_SEARCH_ENDPOINT,default=https://api.tavily.com/search"`
	WebSearchMaxResults int           `json:"web_search_max_results" env:"WEB_SEARCH_MAX_RESULTS,default=3"`
	WebSearchTimeout    time.Duration `json:"web_search_timeout" env:"WEB_SEARCH_TIMEOUT,default=10s"`

	// Prompt persona overrides (optional YAML file)
	PersonaFile string `json:"persona_file" env:"PERSONA_FILE"`

	// HTTP server configuration
	ServerHost            string        `json:"server_host" env:"SERVER_HOST,default=localhost"`
	ServerPort            int           `json:"server_port" env:"SERVER_PORT,default=8080"`
	ServerReadTimeout     time.Duration `json:"server_read_timeout" env:"SERVER_READ_TIMEOUT,default=30s"`
	ServerWriteTimeout    time.Duration `json:"server_write_timeout" env:"SERVER_WRITE_TIMEOUT,default=120s"`
	ServerIdleTimeout     time.Duration `json:"server_idle_timeout" env:"SERVER_IDLE_TIMEOUT,default=120s"`
	ServerShutdownTimeout time.Duration `json:"server_shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT,default=30s"`

	// OpenTelemetry configuration
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=unirag"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	ErrorTypeEmbedding      ErrorType = "embedding_generation"
	ErrorTypeVectorQuery    ErrorType = "vector_query"
	ErrorTypeWebSearch      ErrorType = "web_search"
	ErrorTypeGeneration     ErrorType = "generation"
	ErrorTypeNetworkTimeout ErrorType = "network_timeout"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeResponse       ErrorType = "response"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// QueryError wraps a pipeline failure with its error type so callers can
// distinguish configuration problems from collaborator failures.
type QueryError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a QueryError for a configuration or request
// validation failure. These are always rejected before any external call.
func NewValidationError(message string) *QueryError {
	return &QueryError{Type: ErrorTypeValidation, Message: message}
}
