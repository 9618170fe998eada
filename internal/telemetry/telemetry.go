package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/w-h-a/shiplog/internal/run/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup wires slog through the otel bridge to stderr and, when the config
// carries collector addresses, turns on OTLP trace and metric export. The
// returned func flushes and shuts everything down.
func Setup(ctx context.Context) (func(context.Context) error, error) {
	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNamespace(config.Env()),
			semconv.ServiceName(config.Name()),
			semconv.ServiceVersion(config.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	var shutdowns []func(context.Context) error

	logExporter, err := stdoutlog.New(stdoutlog.WithWriter(os.Stderr))
	if err != nil {
		return nil, err
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	shutdowns = append(shutdowns, loggerProvider.Shutdown)

	slog.SetDefault(otelslog.NewLogger(config.Name(), otelslog.WithLoggerProvider(loggerProvider)))

	if addr := config.TracesAddress(); len(addr) > 0 {
		traceExporter, err := otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpoint(addr),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)

		otel.SetTracerProvider(tracerProvider)

		shutdowns = append(shutdowns, tracerProvider.Shutdown)
	}

	if addr := config.MetricsAddress(); len(addr) > 0 {
		metricExporter, err := otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpoint(addr),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
			sdkmetric.WithResource(res),
		)

		otel.SetMeterProvider(meterProvider)

		shutdowns = append(shutdowns, meterProvider.Shutdown)

		if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
			return nil, err
		}

		if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context) error {
		var errs []error

		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}

		return errors.Join(errs...)
	}, nil
}
