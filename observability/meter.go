package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/widgetkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider.
// The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the engine's metric instruments.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	renderTotal      metric.Int64Counter
	renderDuration   metric.Float64Histogram
	hookTotal        metric.Int64Counter
	instanceActive   metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates the engine instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("widget.dispatch.total",
		metric.WithDescription("Dispatched actions by operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("widget.dispatch.duration",
		metric.WithDescription("Duration of a dispatch including its render cycle"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.dispatch.duration histogram: %w", err)
	}

	renderTotal, err := meter.Int64Counter("widget.render.total",
		metric.WithDescription("Render pipeline runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.render.total counter: %w", err)
	}

	renderDuration, err := meter.Float64Histogram("widget.render.duration",
		metric.WithDescription("Duration of a render pipeline run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.render.duration histogram: %w", err)
	}

	hookTotal, err := meter.Int64Counter("widget.hook.total",
		metric.WithDescription("Host hook invocations by hook and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.hook.total counter: %w", err)
	}

	instanceActive, err := meter.Int64UpDownCounter("widget.instance.active",
		metric.WithDescription("Live widget instances"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.instance.active counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("widget.error.total",
		metric.WithDescription("Errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widget.error.total counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		renderTotal:      renderTotal,
		renderDuration:   renderDuration,
		hookTotal:        hookTotal,
		instanceActive:   instanceActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordDispatch records one dispatcher operation.
func (m *Metrics) RecordDispatch(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordRender records one render pipeline run. Outcome is one of
// "mounted", "unmounted" or "failed".
func (m *Metrics) RecordRender(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.renderTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.renderDuration.Record(ctx, duration.Seconds())
}

// RecordHook records one hook invocation. Status is "ok", "absent" or "error".
func (m *Metrics) RecordHook(ctx context.Context, hook, status string) {
	if m == nil {
		return
	}
	m.hookTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("hook", hook),
		attribute.String("status", status),
	))
}

// InstanceCreated increments the live instance gauge.
func (m *Metrics) InstanceCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.instanceActive.Add(ctx, 1)
}

// InstanceRemoved decrements the live instance gauge.
func (m *Metrics) InstanceRemoved(ctx context.Context) {
	if m == nil {
		return
	}
	m.instanceActive.Add(ctx, -1)
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
