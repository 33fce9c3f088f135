// Package observability provides OpenTelemetry tracing and metrics for the
// foldkit engine.
//
// The engine records through the global providers, which are no-ops until
// the embedding application installs SDK providers, either its own or the
// OTLP HTTP ones built here.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPoolMap)
//	defer observability.EndSpan(span, err)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	observability.Engine().RecordAdmit(ctx, wait)
package observability
