package httpclient

import (
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/go-relay/logger"
)

const (
	// DefaultTimeout is the default per-attempt timeout of the underlying http.Client.
	DefaultTimeout = 30 * time.Second
)

// Builder provides a fluent interface for configuring the REST client.
// Options may be given in any order; errors are reported by Build.
type Builder struct {
	logger               logger.Logger
	baseURL              string
	defaultHeaders       Headers
	defaultRetry         *RetryPolicy
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	timeout              time.Duration
	httpClient           *nethttp.Client
	transport            nethttp.RoundTripper
	rateLimit            rate.Limit
	rateBurst            int
	tracerProvider       trace.TracerProvider
	meterProvider        metric.MeterProvider
	logPayloads          bool
	maxPayloadLogBytes   int
	errs                 []error
}

// NewBuilder creates a new client builder. A nil logger discards all output.
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewWithWriter(io.Discard, "disabled")
	}
	return &Builder{
		logger:             log,
		timeout:            DefaultTimeout,
		maxPayloadLogBytes: DefaultMaxPayloadLogBytes,
	}
}

// WithBaseURL sets the URL request paths are resolved against. It must be absolute.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.baseURL = baseURL
	return b
}

// WithDefaultHeaders replaces the default headers sent with every request.
func (b *Builder) WithDefaultHeaders(headers Headers) *Builder {
	b.defaultHeaders = headers.Clone()
	for k, v := range headers {
		if !validHeader(k, v) {
			b.errs = append(b.errs, NewConfigurationError(fmt.Sprintf("invalid default header %q", k), nil))
		}
	}
	return b
}

// WithDefaultHeader adds one default header.
func (b *Builder) WithDefaultHeader(name, value string) *Builder {
	if !validHeader(name, value) {
		b.errs = append(b.errs, NewConfigurationError(fmt.Sprintf("invalid default header %q", name), nil))
		return b
	}
	if b.defaultHeaders == nil {
		b.defaultHeaders = NewHeaders()
	}
	b.defaultHeaders.Set(name, value)
	return b
}

// WithDefaultRetryPolicy sets the retry policy used by requests that do not carry their own.
func (b *Builder) WithDefaultRetryPolicy(policy RetryPolicy) *Builder {
	b.defaultRetry = &policy
	return b
}

// WithRequestInterceptor appends a request interceptor.
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	if interceptor == nil {
		b.errs = append(b.errs, NewConfigurationError("request interceptor cannot be nil", nil))
		return b
	}
	b.requestInterceptors = append(b.requestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor appends a response interceptor.
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	if interceptor == nil {
		b.errs = append(b.errs, NewConfigurationError("response interceptor cannot be nil", nil))
		return b
	}
	b.responseInterceptors = append(b.responseInterceptors, interceptor)
	return b
}

// WithTimeout sets the per-attempt timeout. Zero disables it.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithHTTPClient uses a copy of hc as the transport client. Its Transport is
// wrapped for default headers; WithTimeout still applies.
func (b *Builder) WithHTTPClient(hc *nethttp.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithTransport sets the RoundTripper requests are sent through.
// It takes precedence over the transport of a client given to WithHTTPClient.
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithRateLimit throttles attempts to rps per second with the given burst.
// A non-positive rps disables limiting.
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	if rps <= 0 {
		b.rateLimit = 0
		return b
	}
	if burst < 1 {
		burst = 1
	}
	b.rateLimit = rate.Limit(rps)
	b.rateBurst = burst
	return b
}

// WithTracerProvider sets the provider for client spans. Defaults to the global provider.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithMeterProvider sets the provider for client metrics. Defaults to the global provider.
func (b *Builder) WithMeterProvider(mp metric.MeterProvider) *Builder {
	b.meterProvider = mp
	return b
}

// WithPayloadLogging enables debug logging of headers and body previews of up
// to maxBytes. A non-positive maxBytes uses DefaultMaxPayloadLogBytes.
func (b *Builder) WithPayloadLogging(maxBytes int) *Builder {
	b.logPayloads = true
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPayloadLogBytes
	}
	b.maxPayloadLogBytes = maxBytes
	return b
}

// Build validates the configuration and creates the client.
func (b *Builder) Build() (Client, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	var base *url.URL
	if b.baseURL != "" {
		u, err := parseBaseURL(b.baseURL)
		if err != nil {
			return nil, err
		}
		base = u
	}

	if b.defaultRetry != nil {
		if err := b.defaultRetry.Validate(); err != nil {
			return nil, err
		}
	}
	if b.timeout < 0 {
		return nil, NewConfigurationError(fmt.Sprintf("timeout must not be negative, got %v", b.timeout), nil)
	}

	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := b.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tel, err := newTelemetry(tp, mp)
	if err != nil {
		return nil, NewConfigurationError("failed to create telemetry instruments", err)
	}

	c := &client{
		httpClient:           b.buildHTTPClient(),
		logger:               b.logger,
		baseURL:              base,
		requestInterceptors:  append([]RequestInterceptor(nil), b.requestInterceptors...),
		responseInterceptors: append([]ResponseInterceptor(nil), b.responseInterceptors...),
		telemetry:            tel,
		logPayloads:          b.logPayloads,
		maxPayloadLogBytes:   b.maxPayloadLogBytes,
	}
	if b.defaultRetry != nil {
		policy := *b.defaultRetry
		c.defaultRetry = &policy
	}
	if b.rateLimit > 0 {
		c.limiter = rate.NewLimiter(b.rateLimit, b.rateBurst)
	}
	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() Client {
	c, err := b.Build()
	if err != nil {
		panic(fmt.Errorf("failed to build REST client: %w", err))
	}
	return c
}

// buildHTTPClient assembles the transport client from the default headers and
// the configured transport, so changing the default headers rebuilds it.
func (b *Builder) buildHTTPClient() *nethttp.Client {
	hc := &nethttp.Client{}
	if b.httpClient != nil {
		copied := *b.httpClient
		hc = &copied
	}

	base := hc.Transport
	if b.transport != nil {
		base = b.transport
	}
	hc.Transport = newDefaultHeaderTransport(base, b.defaultHeaders)
	hc.Timeout = b.timeout
	return hc
}
