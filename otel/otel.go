// Package otel sets up the OpenTelemetry pipeline test executions are
// exported through.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "pwe"

// ErrUnsupportedProto is returned for an endpoint scheme no exporter
// is available for.
var ErrUnsupportedProto = errors.New("unsupported protocol")

// TraceProvider hands out tracers and flushes the spans they recorded
// on Shutdown.
type TraceProvider interface {
	Tracer(name string, options ...trace.TracerOption) trace.Tracer
	Shutdown(ctx context.Context) error
}

// Config describes where spans of a run are exported to.
type Config struct {
	// Endpoint is host:port, optionally prefixed with http:// or https://.
	// A http:// prefix implies Insecure.
	Endpoint string
	Insecure bool
	// Attributes are added to the resource of every span.
	Attributes map[string]string
}

type traceProvider struct {
	trace.TracerProvider

	shutdown func(ctx context.Context) error
}

// NewTraceProvider returns a provider exporting over OTLP/HTTP and
// installs it as the global provider.
func NewTraceProvider(ctx context.Context, cfg Config) (TraceProvider, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("creating exporter: %w", err)
	}

	prov := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg.Attributes)),
	)
	otel.SetTracerProvider(prov)

	return &traceProvider{TracerProvider: prov, shutdown: prov.Shutdown}, nil
}

// NewNoopTraceProvider returns a provider whose spans are discarded.
func NewNoopTraceProvider() TraceProvider {
	return &traceProvider{TracerProvider: noop.NewTracerProvider()}
}

// Shutdown flushes pending spans. Tracers must not be used afterwards.
func (tp *traceProvider) Shutdown(ctx context.Context) error {
	if tp.shutdown == nil {
		return nil
	}
	return tp.shutdown(ctx)
}

func clientOptions(cfg Config) ([]otlptracehttp.Option, error) {
	endpoint, insecure := cfg.Endpoint, cfg.Insecure
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http":
			insecure = true
		case "https":
		default:
			return nil, fmt.Errorf("%w %q", ErrUnsupportedProto, u.Scheme)
		}
		endpoint = u.Host
	}
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint %q", cfg.Endpoint)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts, nil
}

func newResource(attrs map[string]string) *resource.Resource {
	kvs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, kvs...)
}
