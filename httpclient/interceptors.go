package httpclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gaborage/go-relay/status"
	relaytrace "github.com/gaborage/go-relay/trace"
)

const (
	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = relaytrace.HeaderXRequestID
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = relaytrace.HeaderTraceParent
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = relaytrace.HeaderTraceState

	headerAuthorization = "Authorization"

	// tokenExpirySkew refreshes bearer tokens slightly before they expire.
	tokenExpirySkew = 30 * time.Second
)

// NewTraceIDInterceptor adds an X-Request-ID header from the context trace ID,
// generating one when the context has none. An existing header is kept.
func NewTraceIDInterceptor() RequestInterceptor {
	return NewTraceIDInterceptorFor(HeaderXRequestID)
}

// NewTraceIDInterceptorFor is like NewTraceIDInterceptor with a custom header name.
func NewTraceIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = HeaderXRequestID
	}
	return RequestInterceptorFunc(func(ctx context.Context, req *Request) error {
		if req.Header().Get(header) == "" {
			req.SetHeader(header, relaytrace.EnsureTraceID(ctx))
		}
		return nil
	})
}

// NewW3CTraceInterceptor propagates traceparent and tracestate. The active
// OpenTelemetry span wins, then a traceparent stored in the context; otherwise
// a new traceparent is generated.
func NewW3CTraceInterceptor() RequestInterceptor {
	return RequestInterceptorFunc(func(ctx context.Context, req *Request) error {
		relaytrace.InjectHeaders(ctx, req.Header())
		return nil
	})
}

// NewBasicAuthInterceptor sets HTTP basic credentials unless the request already carries an Authorization header.
func NewBasicAuthInterceptor(username, password string) RequestInterceptor {
	return RequestInterceptorFunc(func(_ context.Context, req *Request) error {
		if req.Header().Get(headerAuthorization) == "" {
			req.HTTP().SetBasicAuth(username, password)
		}
		return nil
	})
}

// NewHeaderInterceptor sets every header in headers, overwriting existing values.
func NewHeaderInterceptor(headers Headers) RequestInterceptor {
	fixed := headers.ToHTTP()
	return RequestInterceptorFunc(func(_ context.Context, req *Request) error {
		for k, v := range fixed {
			req.Header()[k] = append([]string(nil), v...)
		}
		return nil
	})
}

// Token is a bearer credential. A zero ExpiresAt never expires.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (t Token) valid(now time.Time) bool {
	if t.Value == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Add(tokenExpirySkew).Before(t.ExpiresAt)
}

// TokenSource fetches bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (Token, error)

// Token calls f(ctx).
func (f TokenSourceFunc) Token(ctx context.Context) (Token, error) { return f(ctx) }

// ErrEmptyToken is returned when a TokenSource yields a token with no value.
var ErrEmptyToken = errors.New("token source returned an empty token")

// BearerTokenInterceptor sets "Authorization: Bearer <token>" from a cached
// token. Concurrent refreshes collapse into a single TokenSource call.
//
// Registered also as a response interceptor, it drops the cached token when
// the server answers 401 so the next request fetches a fresh one.
type BearerTokenInterceptor struct {
	source         TokenSource
	group          singleflight.Group
	now            func() time.Time
	refreshTimeout time.Duration

	mu    sync.RWMutex
	token Token
}

// DefaultTokenRefreshTimeout bounds one TokenSource call.
const DefaultTokenRefreshTimeout = 30 * time.Second

// NewBearerTokenInterceptor creates a bearer token interceptor backed by source.
func NewBearerTokenInterceptor(source TokenSource) *BearerTokenInterceptor {
	return &BearerTokenInterceptor{source: source, now: time.Now, refreshTimeout: DefaultTokenRefreshTimeout}
}

// WithRefreshTimeout sets the bound on one TokenSource call. A non-positive
// timeout restores DefaultTokenRefreshTimeout.
func (b *BearerTokenInterceptor) WithRefreshTimeout(timeout time.Duration) *BearerTokenInterceptor {
	if timeout <= 0 {
		timeout = DefaultTokenRefreshTimeout
	}
	b.refreshTimeout = timeout
	return b
}

// InterceptRequest implements RequestInterceptor.
func (b *BearerTokenInterceptor) InterceptRequest(ctx context.Context, req *Request) error {
	token, err := b.current(ctx)
	if err != nil {
		return err
	}
	req.SetHeader(headerAuthorization, "Bearer "+token.Value)
	return nil
}

// InterceptResponse implements ResponseInterceptor.
func (b *BearerTokenInterceptor) InterceptResponse(_ context.Context, resp *Response) error {
	if resp.Status() == status.Unauthorized {
		b.Invalidate()
	}
	return nil
}

// Invalidate drops the cached token.
func (b *BearerTokenInterceptor) Invalidate() {
	b.mu.Lock()
	b.token = Token{}
	b.mu.Unlock()
}

func (b *BearerTokenInterceptor) current(ctx context.Context) (Token, error) {
	b.mu.RLock()
	token := b.token
	b.mu.RUnlock()
	if token.valid(b.now()) {
		return token, nil
	}

	// The shared refresh outlives any single caller; each caller only stops waiting on its own ctx.
	ch := b.group.DoChan("token", func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.refreshTimeout)
		defer cancel()

		fresh, err := b.source.Token(refreshCtx)
		if err != nil {
			return Token{}, err
		}
		if fresh.Value == "" {
			return Token{}, ErrEmptyToken
		}
		b.mu.Lock()
		b.token = fresh
		b.mu.Unlock()
		return fresh, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Token{}, res.Err
		}
		return res.Val.(Token), nil
	case <-ctx.Done():
		return Token{}, ctx.Err()
	}
}
