package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gaborage/go-relay/status"
)

// Stats contains request execution statistics
type Stats struct {
	// Attempts is the number of transport calls made, including the successful one.
	Attempts    int
	ElapsedTime time.Duration
	// CallCount is the client-wide sequence number of this Execute call.
	CallCount int64
}

// Response wraps the transport response. Status and headers may be read any
// number of times; the body can be read by exactly one accessor (Bytes, Text,
// JSON, DecodeJSON, EnsureSuccess on failure) and later calls return ErrBodyConsumed.
type Response struct {
	raw      *nethttp.Response
	url      *url.URL
	stats    Stats
	consumed atomic.Bool
}

func newResponse(raw *nethttp.Response, u *url.URL, stats Stats) *Response {
	return &Response{raw: raw, url: u, stats: stats}
}

// Status returns the status as a status.Code. Unknown numbers map to a custom code.
func (r *Response) Status() status.Code { return status.FromInt(r.raw.StatusCode) }

// StatusCode returns the numeric status.
func (r *Response) StatusCode() int { return r.raw.StatusCode }

// Header returns the live response header map.
func (r *Response) Header() nethttp.Header { return r.raw.Header }

// URL returns the URL the request was sent to.
func (r *Response) URL() *url.URL { return r.url }

// Raw returns the wrapped response. Reading its body directly bypasses the single-use guard.
func (r *Response) Raw() *nethttp.Response { return r.raw }

// Stats returns execution statistics.
func (r *Response) Stats() Stats { return r.stats }

// Consumed reports whether the body has been read or closed.
func (r *Response) Consumed() bool { return r.consumed.Load() }

// Bytes reads and closes the body.
func (r *Response) Bytes() ([]byte, error) {
	if !r.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}
	if r.raw.Body == nil {
		return nil, nil
	}
	defer r.raw.Body.Close()

	body, err := io.ReadAll(r.raw.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}
	return body, nil
}

// Text reads the body as a string.
func (r *Response) Text() (string, error) {
	body, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON decodes the body into dest. A decode failure returns a *DecodeError
// carrying the URL, status and raw body.
func (r *Response) JSON(dest any) error {
	body, err := r.Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return NewDecodeError(r.url, r.raw.StatusCode, body, err)
	}
	return nil
}

// DecodeJSON decodes the response body into a new T.
func DecodeJSON[T any](r *Response) (T, error) {
	var out T
	if err := r.JSON(&out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// EnsureSuccess returns nil for a 2xx status without touching the body.
// Otherwise it consumes the body into an HTTP error.
func (r *Response) EnsureSuccess() error {
	if r.Status().IsSuccess() {
		return nil
	}
	body, err := r.Bytes()
	if err != nil && !errors.Is(err, ErrBodyConsumed) {
		return err
	}
	return NewHTTPError(fmt.Sprintf("HTTP request failed with status %s", r.Status()), r.raw.StatusCode, body)
}

// Close discards the body. It is safe to call after a body accessor.
func (r *Response) Close() error {
	if !r.consumed.CompareAndSwap(false, true) || r.raw.Body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r.raw.Body, 64<<10))
	return r.raw.Body.Close()
}
