package httpclient

import (
	"context"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-relay/observability"
)

const (
	instrumentationName = "github.com/gaborage/go-relay/httpclient"

	metricAttempts = "http.client.attempts"
	metricDuration = "http.client.duration"

	eventAttemptFailed = "http.attempt.failed"
	attrAttempt        = "http.attempt"
	attrAttempts       = "http.client.attempts"
	attrOutcome        = "outcome"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

// telemetry holds the span and metric instruments used by the pipeline.
type telemetry struct {
	tracer   trace.Tracer
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	meter := mp.Meter(instrumentationName)

	attempts, err := observability.CreateCounter(meter, metricAttempts, "Outbound HTTP transport attempts",
		metric.WithUnit("{attempt}"))
	if err != nil {
		return nil, err
	}
	duration, err := observability.CreateHistogram(meter, metricDuration, "Duration of outbound HTTP calls including retries",
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		attempts: attempts,
		duration: duration,
	}, nil
}

// start opens the client span for one Execute call.
func (t *telemetry) start(ctx context.Context, method string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(semconv.HTTPRequestMethodKey.String(method)),
	)
}

// attempt counts one transport call and, when it failed, records an event on span.
func (t *telemetry) attempt(ctx context.Context, span trace.Span, method string, n int, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
		span.AddEvent(eventAttemptFailed, trace.WithAttributes(
			attribute.Int(attrAttempt, n),
			attribute.String("error.message", err.Error()),
		))
	}
	t.attempts.Add(ctx, 1, metric.WithAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		attribute.String(attrOutcome, outcome),
	))
}

// finish records the call duration and closes span with the final outcome.
func (t *telemetry) finish(ctx context.Context, span trace.Span, method string, u *url.URL, statusCode, attempts int, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{semconv.HTTPRequestMethodKey.String(method)}
	if statusCode > 0 {
		attrs = append(attrs, semconv.HTTPResponseStatusCode(statusCode))
	}
	t.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(attrs...))

	if u != nil && u.Host != "" {
		span.SetAttributes(semconv.URLFull(u.Redacted()))
	}
	span.SetAttributes(attribute.Int(attrAttempts, attempts))
	if statusCode > 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(statusCode))
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case statusCode >= 400:
		span.SetStatus(codes.Error, "")
	}
	span.End()
}
