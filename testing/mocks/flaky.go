package mocks

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
)

// RecordedRequest is a snapshot of one request seen by a FlakyTransport.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// FlakyTransport fails its first Failures calls with a transport error and
// hands later calls to Next. Every call is recorded.
type FlakyTransport struct {
	// Failures is the number of leading calls that fail.
	Failures int
	// Err builds the error for failing call n (1-based). Defaults to a connection reset error.
	Err func(n int) error
	// Next serves calls after the failures. Defaults to EchoResponse.
	Next http.RoundTripper

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFlakyTransport fails the first failures calls, then echoes.
func NewFlakyTransport(failures int) *FlakyTransport {
	return &FlakyTransport{Failures: failures}
}

// NewFailingTransport fails every call.
func NewFailingTransport() *FlakyTransport {
	return &FlakyTransport{Failures: math.MaxInt}
}

// RoundTrip implements http.RoundTripper
func (f *FlakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		rec.Body = body
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	n := len(f.requests)
	f.mu.Unlock()

	if n <= f.Failures {
		if f.Err != nil {
			return nil, f.Err(n)
		}
		return nil, fmt.Errorf("attempt %d: connection reset by peer", n)
	}
	if f.Next != nil {
		return f.Next.RoundTrip(req)
	}
	return EchoResponse(req)
}

// Calls returns the number of RoundTrip calls so far.
func (f *FlakyTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns the recorded requests in call order.
func (f *FlakyTransport) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}
