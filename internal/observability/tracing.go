package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv"
	"go.opentelemetry.io/otel/trace"
)

// TracerShutdown flushes and stops the exporter installed by InstallTracing.
type TracerShutdown func(ctx context.Context) error

// InstallTracing points an OTLP/gRPC exporter at endpoint and installs it as
// the global tracer provider under serviceName. A no-op shutdown is returned
// when endpoint is empty, so operators that don't set
// OPENTELEMETRY_ENDPOINT_URL get untraced reconciles instead of a startup
// error.
func InstallTracing(ctx context.Context, serviceName, endpoint string) (TracerShutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	driver := otlpgrpc.NewDriver(
		otlpgrpc.WithEndpoint(endpoint),
		otlpgrpc.WithInsecure(),
	)
	exp, err := otlp.NewExporter(ctx, driver)
	if err != nil {
		return nil, fmt.Errorf("installing otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(exp)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithConfig(sdktrace.Config{DefaultSampler: sdktrace.AlwaysSample()}),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	otel.SetTracerProvider(provider)

	return func(shutdownCtx context.Context) error {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return exp.Shutdown(shutdownCtx)
	}, nil
}

// StartReconcileSpan opens a structured span around one Reconcile call,
// naming it after the resource kind and tagging it with the namespaced name
// being reconciled.
func StartReconcileSpan(ctx context.Context, kind, namespace, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("garage-operator")
	ctx, span := tracer.Start(ctx, "Reconcile."+kind)
	span.SetAttributes(
		attribute.String("kind", kind),
		attribute.String("namespace", namespace),
		attribute.String("name", name),
	)
	return ctx, span
}
