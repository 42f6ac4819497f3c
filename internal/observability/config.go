// Package observability wires OpenTelemetry tracing and metrics export for
// the service. When disabled it installs no-op providers so instrumentation
// call sites stay unconditional.
package observability

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ptit-ai/unirag/internal/types"
)

const (
	defaultServiceName      = "unirag"
	defaultExporterProtocol = "http/protobuf"
	protocolGRPC            = "grpc"
	resourceServiceNameKey  = "service.name"
)

// Config keeps OpenTelemetry runtime settings resolved from the service
// configuration.
type Config struct {
	Enabled              bool
	ServiceName          string
	ExporterEndpoint     string
	ExporterProtocol     string
	ResourceAttributes   map[string]string
	TracesSampler        string
	TracesSamplerArg     float64
	MetricExportInterval time.Duration
}

// LoadConfig resolves observability settings from the root config and
// validates them.
func LoadConfig(cfg *types.Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil root configuration provided")
	}

	attrs, err := parseResourceAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to parse resource attributes: %w", err)
	}

	otelCfg := &Config{
		Enabled:            cfg.OTelEnabled,
		ServiceName:        strings.TrimSpace(cfg.OTelServiceName),
		ExporterEndpoint:   strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		ExporterProtocol:   strings.TrimSpace(cfg.OTelExporterOTLPProtocol),
		ResourceAttributes: attrs,
		TracesSampler:      strings.TrimSpace(cfg.OTelTracesSampler),
		TracesSamplerArg:   cfg.OTelTracesSamplerArg,
	}
	if err := otelCfg.Validate(); err != nil {
		return nil, err
	}
	return otelCfg, nil
}

// Validate normalizes defaults and checks required fields.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("observability: config is nil")
	}

	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.ExporterProtocol = strings.ToLower(strings.TrimSpace(c.ExporterProtocol)); c.ExporterProtocol == "" {
		c.ExporterProtocol = defaultExporterProtocol
	}
	if c.TracesSampler == "" {
		c.TracesSampler = "always_on"
	}
	if c.MetricExportInterval <= 0 {
		c.MetricExportInterval = 60 * time.Second
	}
	if c.ResourceAttributes == nil {
		c.ResourceAttributes = make(map[string]string)
	}
	if _, ok := c.ResourceAttributes[resourceServiceNameKey]; !ok {
		c.ResourceAttributes[resourceServiceNameKey] = c.ServiceName
	}

	if !c.Enabled {
		return nil
	}

	if err := c.validateEndpoint(); err != nil {
		return err
	}

	if c.TracesSamplerArg < 0 {
		return fmt.Errorf("observability: traces sampler argument must be non-negative")
	}
	if strings.EqualFold(c.TracesSampler, "traceidratio") &&
		(c.TracesSamplerArg <= 0 || c.TracesSamplerArg > 1) {
		return fmt.Errorf("observability: traces sampler argument must be between 0 and 1 when sampler is traceidratio")
	}
	return nil
}

func (c *Config) validateEndpoint() error {
	if c.ExporterEndpoint == "" {
		return fmt.Errorf("observability: OTLP exporter endpoint is required when OpenTelemetry is enabled")
	}

	switch c.ExporterProtocol {
	case defaultExporterProtocol:
		parsed, err := url.Parse(c.ExporterEndpoint)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("observability: OTLP exporter endpoint %q must be an http(s) URL with a host for the http/protobuf protocol", c.ExporterEndpoint)
		}
	case protocolGRPC:
		// Bare host:port is the common form; a scheme is tolerated and
		// stripped later by parseGRPCEndpoint.
		if !strings.Contains(c.ExporterEndpoint, "://") && !strings.Contains(c.ExporterEndpoint, ":") {
			return fmt.Errorf("observability: OTLP exporter endpoint should include host:port when using grpc protocol")
		}
	default:
		return fmt.Errorf("observability: unsupported OTLP exporter protocol %q", c.ExporterProtocol)
	}
	return nil
}

func parseResourceAttributes(input string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(input, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid resource attribute %q", pair)
		}
		attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return attrs, nil
}

// Init initializes tracing and metrics from the root configuration and
// returns a shutdown handler that flushes both exporters.
func Init(rootCfg *types.Config) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	otelCfg, err := LoadConfig(rootCfg)
	if err != nil {
		return noop, err
	}

	ctx := context.Background()

	tracerProvider, err := InitTracer(ctx, otelCfg)
	if err != nil {
		return noop, err
	}

	meterProvider, err := InitMeter(ctx, otelCfg)
	if err != nil {
		shutdown := NewShutdownFunc(tracerProvider, nil)
		_ = shutdown(ctx)
		return noop, err
	}

	return NewShutdownFunc(tracerProvider, meterProvider), nil
}
