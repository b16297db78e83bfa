package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/go-relay/logger"
)

// Client executes requests through the interceptor and retry pipeline.
// A Client is safe for concurrent use.
type Client interface {
	// Execute runs the full pipeline for req: base URL resolution, request
	// interceptors, query parameters, JSON body, the retry loop and response
	// interceptors, in that order.
	Execute(ctx context.Context, req *Request) (*Response, error)

	Get(ctx context.Context, path string) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
	// Post, Put and Patch send body as JSON. A nil body sends no body.
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Patch(ctx context.Context, path string, body any) (*Response, error)
}

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	baseURL              *url.URL
	defaultRetry         *RetryPolicy
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	limiter              *rate.Limiter
	telemetry            *telemetry
	logPayloads          bool
	maxPayloadLogBytes   int
	callCount            atomic.Int64
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Execute(ctx, NewRequest(nethttp.MethodGet, path))
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Execute(ctx, NewRequest(nethttp.MethodDelete, path))
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Execute(ctx, withOptionalJSON(NewRequest(nethttp.MethodPost, path), body))
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Execute(ctx, withOptionalJSON(NewRequest(nethttp.MethodPut, path), body))
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Execute(ctx, withOptionalJSON(NewRequest(nethttp.MethodPatch, path), body))
}

func withOptionalJSON(req *Request, body any) *Request {
	if body == nil {
		return req
	}
	return req.WithJSONBody(body)
}

// Execute implements Client.
func (c *client) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := c.callCount.Add(1)
	logger.IncrementHTTPCounter(ctx)
	defer func() { logger.AddHTTPElapsed(ctx, time.Since(start).Nanoseconds()) }()

	ctx, span := c.telemetry.start(ctx, req.Method())
	work := req.working(ctx)

	resp, attempts, err := c.execute(ctx, span, work, start, callCount)
	elapsed := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode()
	}
	c.telemetry.finish(ctx, span, work.Method(), work.URL(), statusCode, attempts, elapsed, err)

	if err != nil {
		c.logFailure(work, attempts, elapsed, err)
		return nil, err
	}
	return resp, nil
}

func (c *client) execute(ctx context.Context, span trace.Span, work *Request, start time.Time, callCount int64) (*Response, int, error) {
	// 1. Base URL resolution, never retried.
	if path, ok := work.Path(); ok {
		u, err := resolveURL(c.baseURL, path)
		if err != nil {
			return nil, 0, err
		}
		work.SetURL(u)
	}

	// 2. Request interceptors see the resolved URL but not yet the query or body.
	if err := c.runRequestInterceptors(ctx, work); err != nil {
		return nil, 0, err
	}

	// 3 and 4 run once, before the retry loop.
	work.applyQuery()
	if _, err := work.applyJSONBody(); err != nil {
		return nil, 0, err
	}

	if !isAbsoluteURL(work.URL()) {
		return nil, 0, NewConfigurationError("request URL is not absolute: "+redactURL(work.URL())+
			" (set a base URL or use an absolute path)", nil)
	}

	c.logRequest(work)

	// 5. Retry loop.
	policy := effectiveRetryPolicy(work.retryPolicy, c.defaultRetry)
	httpResp, attempts, err := c.send(ctx, span, work, policy)
	if err != nil {
		return nil, attempts, err
	}

	resp := newResponse(httpResp, work.URL(), Stats{
		Attempts:    attempts,
		ElapsedTime: time.Since(start),
		CallCount:   callCount,
	})

	// 6. Response interceptors.
	if err := c.runResponseInterceptors(ctx, resp); err != nil {
		_ = resp.Close()
		return nil, attempts, err
	}

	c.logResponse(work.Method(), resp)
	return resp, attempts, nil
}

// send performs up to policy.MaxAttempts transport calls. Each attempt sends a
// fresh clone of the prepared request. Only transport failures are retried;
// any HTTP status is a successful attempt.
func (c *client) send(ctx context.Context, span trace.Span, work *Request, policy RetryPolicy) (*nethttp.Response, int, error) {
	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, attempt - 1, c.transportError("rate limiter wait failed", err, attempt-1)
			}
		}

		attemptReq, err := cloneForAttempt(ctx, work.HTTP())
		if err != nil {
			return nil, attempt - 1, err
		}

		httpResp, err := c.httpClient.Do(attemptReq)
		c.telemetry.attempt(ctx, span, work.Method(), attempt, err)
		if err == nil {
			return httpResp, attempt, nil
		}

		if attempt >= policy.MaxAttempts || ctx.Err() != nil {
			return nil, attempt, c.transportError("request execution failed", err, attempt)
		}

		c.logRetry(work, attempt, policy, err)
		if werr := sleepContext(ctx, policy.Backoff); werr != nil {
			return nil, attempt, c.transportError("retry aborted", werr, attempt)
		}
	}
}

// transportError classifies a transport failure as timeout or network error.
func (c *client) transportError(message string, err error, attempts int) error {
	if isTimeout(err) {
		return &timeoutError{message: message, timeout: c.httpClient.Timeout, wrapped: err, attempts: attempts}
	}
	return &networkError{message: message, wrapped: err, attempts: attempts}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// validateRequest validates the request before sending
func validateRequest(req *Request) error {
	if req == nil || req.req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.err != nil {
		return &validationError{message: "invalid request", field: "header", wrapped: req.err}
	}
	if !validMethod(req.Method()) {
		return NewValidationError(fmt.Sprintf("invalid HTTP method %q", req.Method()), "method")
	}
	return nil
}
