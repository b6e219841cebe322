// Package telemetry wires OpenTelemetry traces, metrics and logs for the
// OpsEase backend. Each signal has its own provider; a disabled provider
// leaves the global no-op implementation in place.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	shutdownTimeout       = 10 * time.Second
	defaultExportInterval = time.Minute
)

// lifecycle is the flush-and-stop half shared by the signal providers.
// The zero value belongs to a disabled provider and stops as a no-op.
type lifecycle struct {
	signal string
	logger *zap.Logger
	stop   func(context.Context) error
}

// Shutdown flushes whatever the exporter still holds, bounded by
// shutdownTimeout.
func (l lifecycle) Shutdown(ctx context.Context) error {
	if l.stop == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := l.stop(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s provider: %w", l.signal, err)
	}
	if l.logger != nil {
		l.logger.Info("Telemetry provider stopped", zap.String("signal", l.signal))
	}
	return nil
}

// serviceResource describes this process to the collector.
func serviceResource(name, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}
	return res, nil
}
