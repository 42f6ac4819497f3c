package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	otelMetricsOnce       sync.Once
	otelRegistrationError error
)

// InitOTelMetrics registers observable gauges that report cumulative totals
// from SQLite. Call after observability.Init().
func InitOTelMetrics() error {
	otelMetricsOnce.Do(func() {
		meter := otel.Meter("unirag/metrics")

		_, err := meter.Int64ObservableGauge(
			"unirag.invocations.total",
			metric.WithDescription("Cumulative total invocations by mode (query, chat, serve)"),
			metric.WithUnit("{invocations}"),
			metric.WithInt64Callback(invocationCallback),
		)
		if err != nil {
			log.Printf("metrics: failed to create invocation gauge: %v", err)
			otelRegistrationError = err
			return
		}

		_, err = meter.Int64ObservableGauge(
			"unirag.answers.total",
			metric.WithDescription("Cumulative answers by source (knowledge_base, web_search, hybrid, llm_only)"),
			metric.WithUnit("{answers}"),
			metric.WithInt64Callback(answerSourceCallback),
		)
		if err != nil {
			log.Printf("metrics: failed to create answer source gauge: %v", err)
			otelRegistrationError = err
			return
		}
	})
	return otelRegistrationError
}

func invocationCallback(_ context.Context, observer metric.Int64Observer) error {
	stats := GetStats()
	if stats == nil {
		for _, mode := range AllModes {
			observer.Observe(0, metric.WithAttributes(
				attribute.String("mode", string(mode)),
			))
		}
		return nil
	}

	for mode, count := range stats {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("mode", string(mode)),
		))
	}

	return nil
}

func answerSourceCallback(_ context.Context, observer metric.Int64Observer) error {
	stats := GetAnswerSourceStats()
	if stats == nil {
		for _, source := range AllAnswerSources {
			observer.Observe(0, metric.WithAttributes(
				attribute.String("source", string(source)),
			))
		}
		return nil
	}

	for source, count := range stats {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("source", string(source)),
		))
	}

	return nil
}

// ResetOTelForTesting resets the OTel initialization state for tests.
func ResetOTelForTesting() {
	otelMetricsOnce = sync.Once{}
	otelRegistrationError = nil
}
