// Package observability wires OpenTelemetry tracing and metrics into the
// widget engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("widgetd"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("widgetd"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("widgetkit"))
//	metrics.RecordDispatch(ctx, "open", "ok", elapsed)
//
// A nil *Metrics is valid and records nothing.
package observability
