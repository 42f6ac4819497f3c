package opensearch

import (
	"fmt"
	"strings"
	"time"

	"github.com/ptit-ai/unirag/internal/types"
)

type SearchError struct {
	Type       types.ErrorType `json:"type"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	Retryable  bool            `json:"retryable"`
	RetryAfter time.Duration   `json:"retry_after,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e *SearchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *SearchError) IsRetryable() bool {
	return e.Retryable
}

func NewSearchError(errType types.ErrorType, message string) *SearchError {
	return &SearchError{
		Type:      errType,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now(),
	}
}

func NewRetryableSearchError(errType types.ErrorType, message string, retryAfter time.Duration) *SearchError {
	return &SearchError{
		Type:       errType,
		Message:    message,
		Retryable:  true,
		RetryAfter: retryAfter,
		Timestamp:  time.Now(),
	}
}

// ClassifyConnectionError maps a transport error to a SearchError so the
// retry loop can tell transient failures from configuration mistakes.
func ClassifyConnectionError(err error) *SearchError {
	errMsg := err.Error()

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
		return NewRetryableSearchError(types.ErrorTypeNetworkTimeout,
			"connection to OpenSearch timed out", 5*time.Second)
	}

	if strings.Contains(errMsg, "connection refused") {
		return NewSearchError(types.ErrorTypeValidation,
			"connection to OpenSearch was refused; check the endpoint URL and port")
	}

	if strings.Contains(errMsg, "no such host") {
		return NewSearchError(types.ErrorTypeValidation,
			"OpenSearch host not found; check the endpoint hostname")
	}

	if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "Too Many Requests") {
		return NewRetryableSearchError(types.ErrorTypeRateLimit,
			"OpenSearch rate limit reached", 10*time.Second)
	}

	return NewRetryableSearchError(types.ErrorTypeUnknown,
		fmt.Sprintf("connection error: %v", err), 10*time.Second)
}
