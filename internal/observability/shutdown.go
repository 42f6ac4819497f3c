package observability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const defaultShutdownTimeout = 5 * time.Second

// ShutdownFunc flushes and shuts down the installed exporters.
type ShutdownFunc func(context.Context) error

// NewShutdownFunc coordinates tracer and meter shutdown.
func NewShutdownFunc(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider) ShutdownFunc {
	return func(ctx context.Context) error {
		shutdownCtx, cancel := ensureShutdownContext(ctx)
		defer cancel()

		var errs []error

		if tp != nil {
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Printf("observability: failed to shutdown tracer provider: %v", err)
				errs = append(errs, fmt.Errorf("tracer provider: %w", err))
			}
		}

		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				log.Printf("observability: failed to shutdown meter provider: %v", err)
				errs = append(errs, fmt.Errorf("meter provider: %w", err))
			}
		}

		if len(errs) == 0 {
			return nil
		}

		return errors.Join(errs...)
	}
}

func ensureShutdownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultShutdownTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, defaultShutdownTimeout)
}

// normalizeOTLPHTTPPath ensures the OTLP HTTP endpoint carries the expected
// signal suffix. Endpoints already ending in the suffix pass through
// unchanged; bare endpoints get the suffix appended.
func normalizeOTLPHTTPPath(endpoint string, suffix string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("endpoint cannot be empty")
	}

	normalizedSuffix := "/" + strings.Trim(strings.TrimSpace(suffix), "/")

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	trimmedPath := strings.TrimSuffix(parsed.Path, "/")
	switch {
	case trimmedPath == "":
		parsed.Path = normalizedSuffix
	case strings.HasSuffix(trimmedPath, normalizedSuffix):
		parsed.Path = trimmedPath
	default:
		parsed.Path = trimmedPath + normalizedSuffix
	}

	return parsed.String(), nil
}
