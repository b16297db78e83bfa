// Package trace carries request correlation identifiers through a context
// and renders them as outbound HTTP headers (X-Request-ID and W3C Trace Context).
package trace

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	traceIDKey     contextKey = "trace_id"
	traceParentKey contextKey = "traceparent"
	traceStateKey  contextKey = "tracestate"

	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = "tracestate"
)

// ErrInvalidTraceParent is returned when a traceparent value is malformed.
var ErrInvalidTraceParent = errors.New("invalid traceparent")

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// IDFromContext returns a trace ID from context if present
func IDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureTraceID returns an existing trace ID from context or generates a new UUID
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := IDFromContext(ctx); ok {
		return traceID
	}
	return uuid.New().String()
}

// WithTraceParent adds a W3C traceparent value to the context
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, traceParentKey, traceParent)
}

// ParentFromContext returns a traceparent from context if present
func ParentFromContext(ctx context.Context) (string, bool) {
	if tp, ok := ctx.Value(traceParentKey).(string); ok && tp != "" {
		return tp, true
	}
	return "", false
}

// WithTraceState adds a W3C tracestate value to the context
func WithTraceState(ctx context.Context, traceState string) context.Context {
	return context.WithValue(ctx, traceStateKey, traceState)
}

// StateFromContext returns a tracestate from context if present
func StateFromContext(ctx context.Context) (string, bool) {
	if ts, ok := ctx.Value(traceStateKey).(string); ok && ts != "" {
		return ts, true
	}
	return "", false
}

// TraceParent is a parsed W3C traceparent header.
type TraceParent struct {
	Version string
	TraceID string
	SpanID  string
	Flags   string
}

// String renders the traceparent header value.
func (tp TraceParent) String() string {
	return tp.Version + "-" + tp.TraceID + "-" + tp.SpanID + "-" + tp.Flags
}

// Sampled reports whether the sampled flag is set.
func (tp TraceParent) Sampled() bool {
	b, err := hex.DecodeString(tp.Flags)
	return err == nil && len(b) == 1 && b[0]&0x01 == 0x01
}

// ParseTraceParent validates and splits a traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2).
func ParseTraceParent(value string) (TraceParent, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 4 {
		return TraceParent{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrInvalidTraceParent, len(parts))
	}
	tp := TraceParent{Version: parts[0], TraceID: parts[1], SpanID: parts[2], Flags: parts[3]}

	checks := []struct {
		name  string
		value string
		size  int
	}{
		{"version", tp.Version, 2},
		{"trace-id", tp.TraceID, 32},
		{"span-id", tp.SpanID, 16},
		{"flags", tp.Flags, 2},
	}
	for _, c := range checks {
		if len(c.value) != c.size || !isLowerHex(c.value) {
			return TraceParent{}, fmt.Errorf("%w: bad %s %q", ErrInvalidTraceParent, c.name, c.value)
		}
	}
	if tp.Version == "ff" {
		return TraceParent{}, fmt.Errorf("%w: version ff is forbidden", ErrInvalidTraceParent)
	}
	if strings.Trim(tp.TraceID, "0") == "" || strings.Trim(tp.SpanID, "0") == "" {
		return TraceParent{}, fmt.Errorf("%w: all-zero identifier", ErrInvalidTraceParent)
	}
	return tp, nil
}

// GenerateTraceParent creates a minimal W3C traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2), e.g., "00-<32>-<16>-01"
func GenerateTraceParent() string {
	return TraceParent{Version: "00", TraceID: randomHex(16), SpanID: randomHex(8), Flags: "01"}.String()
}

// ChildTraceParent keeps the trace id of parent and assigns a fresh span id.
// A malformed parent starts a new trace.
func ChildTraceParent(parent string) string {
	tp, err := ParseTraceParent(parent)
	if err != nil {
		return GenerateTraceParent()
	}
	tp.Version = "00"
	tp.SpanID = randomHex(8)
	return tp.String()
}

// TraceParentFromSpan renders the active OpenTelemetry span in ctx as a
// traceparent value. ok is false when ctx carries no valid span.
func TraceParentFromSpan(ctx context.Context) (string, bool) {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", false
	}
	flags := "00"
	if sc.IsSampled() {
		flags = "01"
	}
	return TraceParent{Version: "00", TraceID: sc.TraceID().String(), SpanID: sc.SpanID().String(), Flags: flags}.String(), true
}

// InjectHeaders writes the context's trace identifiers into h without
// overwriting values already present. The active OpenTelemetry span wins over
// a traceparent stored with WithTraceParent; with neither, a new one is generated.
func InjectHeaders(ctx context.Context, h http.Header) {
	if h.Get(HeaderTraceParent) == "" {
		if tp, ok := TraceParentFromSpan(ctx); ok {
			h.Set(HeaderTraceParent, tp)
		} else if parent, ok := ParentFromContext(ctx); ok {
			h.Set(HeaderTraceParent, ChildTraceParent(parent))
		} else {
			h.Set(HeaderTraceParent, GenerateTraceParent())
		}
	}
	if h.Get(HeaderTraceState) == "" {
		if ts, ok := StateFromContext(ctx); ok {
			h.Set(HeaderTraceState, ts)
		}
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil || allZero(b) {
		b[len(b)-1] = 0x01
	}
	return hex.EncodeToString(b)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
