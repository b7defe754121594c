package observability

import (
	"context"
	"time"

	"github.com/annel0/bullethell/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Shutdown завершает экспорт трасс
type Shutdown func(context.Context) error

// NewTracerProvider собирает TracerProvider с ресурсом service.name
// поверх переданного экспортера. Глобально не устанавливается.
func NewTracerProvider(ctx context.Context, serviceName string, exp sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

// InitTelemetry настраивает OTLP HTTP экспортер (по умолчанию localhost:4318)
// и устанавливает глобальный TracerProvider. Возвращённый Shutdown нужно
// вызвать при завершении.
func InitTelemetry(ctx context.Context, serviceName string) (Shutdown, error) {
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	tp, err := NewTracerProvider(ctx, serviceName, exp)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	logging.Info("OpenTelemetry инициализирован (OTLP → 4318, service=%s)", serviceName)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
