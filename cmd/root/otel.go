package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/walassistant/wal/pkg/version"
)

const AppName = "wal"

// Commands are short lived; spans are flushed on exit anyway.
const exportInterval = time.Second

var errNoCollector = errors.New("no OTLP endpoint: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")

// collectorConfigured reports whether the standard OTLP environment names a
// trace collector. The exporter reads the same variables, including
// headers and TLS settings.
func collectorConfigured() bool {
	for _, name := range []string{"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// newTracerProvider exports the spans of apply and restore runs to the
// configured collector.
func newTracerProvider(ctx context.Context) (*trace.TracerProvider, error) {
	if !collectorConfigured() {
		return nil, errNoCollector
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(AppName),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to describe the wal process: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(exportInterval)),
	), nil
}

// initOTelSDK installs the global tracer provider the engine traces with.
// The returned function flushes pending spans.
func initOTelSDK(ctx context.Context) (shutdown func(context.Context) error, err error) {
	tp, err := newTracerProvider(ctx)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
