package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	otlpmetricgrpc "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otlpmetrichttp "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter builds a meter provider and installs it globally. When
// observability is disabled the provider exports nothing.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: meter initialization requires a config")
	}

	if !cfg.Enabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return mp, nil
	}

	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create OTLP metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to build resource information: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricExportInterval))

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

func newMetricExporter(ctx context.Context, cfg *Config) (sdkmetric.Exporter, error) {
	switch cfg.ExporterProtocol {
	case defaultExporterProtocol:
		endpoint, err := normalizeOTLPHTTPPath(cfg.ExporterEndpoint, "/v1/metrics")
		if err != nil {
			return nil, fmt.Errorf("observability: invalid OTLP HTTP endpoint: %w", err)
		}

		options := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpointURL(endpoint),
		}
		if strings.HasPrefix(endpoint, "http://") {
			options = append(options, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, options...)
	case protocolGRPC:
		endpoint, insecure, err := parseGRPCEndpoint(cfg.ExporterEndpoint)
		if err != nil {
			return nil, fmt.Errorf("observability: invalid OTLP gRPC endpoint: %w", err)
		}

		options := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(endpoint),
		}
		if insecure {
			options = append(options, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, options...)
	default:
		return nil, fmt.Errorf("observability: unsupported metric exporter protocol %q", cfg.ExporterProtocol)
	}
}
