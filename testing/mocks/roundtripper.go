// Package mocks provides http.RoundTripper test doubles for REST client tests.
package mocks

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
)

// RoundTripFunc computes a response per call. Pass it to ExpectRoundTripFunc when
// every call needs a fresh body.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// MockRoundTripper provides a testify-based mock implementation of http.RoundTripper.
//
// Example usage:
//
//	rt := &mocks.MockRoundTripper{}
//	rt.ExpectRoundTrip(mocks.NewResponse(http.StatusOK, `{"ok":true}`), nil).Once()
//	client := httpclient.NewBuilder(log).WithTransport(rt).MustBuild()
//	...
//	rt.AssertExpectations(t)
type MockRoundTripper struct {
	mock.Mock
}

// RoundTrip implements http.RoundTripper
func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if fn, ok := args.Get(0).(RoundTripFunc); ok {
		return fn(req)
	}

	resp, _ := args.Get(0).(*http.Response)
	if resp != nil {
		resp.Request = req
	}
	return resp, args.Error(1)
}

// ExpectRoundTrip sets up an expectation for any request returning resp and err.
func (m *MockRoundTripper) ExpectRoundTrip(resp *http.Response, err error) *mock.Call {
	return m.On("RoundTrip", mock.Anything).Return(resp, err)
}

// ExpectRoundTripFunc sets up an expectation whose result is computed by fn.
func (m *MockRoundTripper) ExpectRoundTripFunc(fn RoundTripFunc) *mock.Call {
	return m.On("RoundTrip", mock.Anything).Return(fn, nil)
}

// ExpectRoundTripMatching sets up an expectation for requests accepted by match.
func (m *MockRoundTripper) ExpectRoundTripMatching(match func(*http.Request) bool, resp *http.Response, err error) *mock.Call {
	return m.On("RoundTrip", mock.MatchedBy(match)).Return(resp, err)
}

// NewResponse builds a response with a string body.
func NewResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode:    statusCode,
		Status:        http.StatusText(statusCode),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// NewJSONResponse builds a response with Content-Type application/json.
func NewJSONResponse(statusCode int, body string) *http.Response {
	resp := NewResponse(statusCode, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

// EchoResponse answers with the request body, Content-Type and status 200.
func EchoResponse(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}
	resp := NewResponse(http.StatusOK, "")
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	if ct := req.Header.Get("Content-Type"); ct != "" {
		resp.Header.Set("Content-Type", ct)
	}
	resp.Request = req
	return resp, nil
}
