package trace

import (
	"context"
	nethttp "net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const testTraceParent = "00-0123456789abcdef0123456789abcdef-0123456789abcdef-01"

var traceParentPattern = regexp.MustCompile(`^00-[0-9a-f]{32}-[0-9a-f]{16}-0[01]$`)

func TestHeaderConstants(t *testing.T) {
	assert.Equal(t, "X-Request-ID", HeaderXRequestID)
	assert.Equal(t, "traceparent", HeaderTraceParent)
	assert.Equal(t, "tracestate", HeaderTraceState)
}

func TestEnsureTraceID(t *testing.T) {
	t.Run("uses existing", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "existing-trace-id")
		assert.Equal(t, "existing-trace-id", EnsureTraceID(ctx))
	})

	t.Run("generates when missing", func(t *testing.T) {
		got := EnsureTraceID(context.Background())
		re := regexp.MustCompile(`^[a-f0-9\-]{36}$`)
		assert.True(t, re.MatchString(strings.ToLower(got)))
	})

	t.Run("empty value is ignored", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "")
		_, ok := IDFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestContextRoundTrips(t *testing.T) {
	ctx := WithTraceParent(context.Background(), testTraceParent)
	ctx = WithTraceState(ctx, "vendor=a:b,c=d")

	tp, ok := ParentFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, testTraceParent, tp)

	ts, ok := StateFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "vendor=a:b,c=d", ts)
}

func TestGenerateTraceParent(t *testing.T) {
	tp := GenerateTraceParent()
	assert.Regexp(t, traceParentPattern, tp)

	parsed, err := ParseTraceParent(tp)
	require.NoError(t, err)
	assert.True(t, parsed.Sampled())
	assert.NotEqual(t, GenerateTraceParent(), tp)
}

func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: testTraceParent},
		{name: "too few fields", value: "00-abc-01", wantErr: true},
		{name: "upper case hex", value: "00-0123456789ABCDEF0123456789abcdef-0123456789abcdef-01", wantErr: true},
		{name: "short span id", value: "00-0123456789abcdef0123456789abcdef-0123-01", wantErr: true},
		{name: "forbidden version", value: "ff-0123456789abcdef0123456789abcdef-0123456789abcdef-01", wantErr: true},
		{name: "zero trace id", value: "00-00000000000000000000000000000000-0123456789abcdef-01", wantErr: true},
		{name: "zero span id", value: "00-0123456789abcdef0123456789abcdef-0000000000000000-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := ParseTraceParent(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTraceParent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, tp.String())
		})
	}
}

func TestChildTraceParent(t *testing.T) {
	child := ChildTraceParent(testTraceParent)
	parsed, err := ParseTraceParent(child)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", parsed.TraceID)
	assert.NotEqual(t, "0123456789abcdef", parsed.SpanID)

	assert.Regexp(t, traceParentPattern, ChildTraceParent("garbage"))
}

func TestInjectHeaders(t *testing.T) {
	t.Run("generates when context is empty", func(t *testing.T) {
		h := nethttp.Header{}
		InjectHeaders(context.Background(), h)
		assert.Regexp(t, traceParentPattern, h.Get(HeaderTraceParent))
		assert.Empty(t, h.Get(HeaderTraceState))
	})

	t.Run("derives child from context parent", func(t *testing.T) {
		ctx := WithTraceParent(context.Background(), testTraceParent)
		ctx = WithTraceState(ctx, "k=v")
		h := nethttp.Header{}
		InjectHeaders(ctx, h)

		assert.Contains(t, h.Get(HeaderTraceParent), "0123456789abcdef0123456789abcdef")
		assert.Equal(t, "k=v", h.Get(HeaderTraceState))
	})

	t.Run("preserves existing headers", func(t *testing.T) {
		h := nethttp.Header{}
		h.Set(HeaderTraceParent, "keep-me")
		h.Set(HeaderTraceState, "keep=me")
		InjectHeaders(WithTraceState(context.Background(), "x=y"), h)

		assert.Equal(t, "keep-me", h.Get(HeaderTraceParent))
		assert.Equal(t, "keep=me", h.Get(HeaderTraceState))
	})

	t.Run("prefers active otel span", func(t *testing.T) {
		traceID, err := oteltrace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		require.NoError(t, err)
		spanID, err := oteltrace.SpanIDFromHex("00f067aa0ba902b7")
		require.NoError(t, err)
		sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: oteltrace.FlagsSampled,
		})
		ctx := oteltrace.ContextWithSpanContext(WithTraceParent(context.Background(), testTraceParent), sc)

		h := nethttp.Header{}
		InjectHeaders(ctx, h)
		assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", h.Get(HeaderTraceParent))
	})
}
