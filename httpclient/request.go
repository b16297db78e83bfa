package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	nethttp "net/http"
	"net/url"
	"strings"
)

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Request describes one logical call. It wraps the *http.Request that is
// eventually sent and carries the parts the pipeline applies in order: path,
// query parameters, JSON body and retry policy.
//
// Execute works on a copy, so a Request may be executed more than once.
type Request struct {
	req         *nethttp.Request
	path        string
	hasPath     bool
	queryParams map[string]string
	jsonBody    any
	hasJSONBody bool
	retryPolicy *RetryPolicy

	// err records the first invalid chained setter; Execute reports it.
	err error
}

// NewRequest creates a request for method and a path resolved against the client base URL.
// The path may also be an absolute URL. An empty path resolves to the base URL itself.
func NewRequest(method, path string) *Request {
	r := &Request{
		req: (&nethttp.Request{
			Method:     strings.ToUpper(method),
			URL:        &url.URL{},
			Header:     make(nethttp.Header),
			Proto:      "HTTP/1.1",
			ProtoMajor: 1,
			ProtoMinor: 1,
		}).WithContext(context.Background()),
		path:    path,
		hasPath: true,
	}
	return r
}

// NewRequestFromHTTP wraps an existing request. Its URL is used as-is unless WithPath is called.
func NewRequestFromHTTP(req *nethttp.Request) *Request {
	if req.Header == nil {
		req.Header = make(nethttp.Header)
	}
	if req.URL == nil {
		req.URL = &url.URL{}
	}
	if req.Method == "" {
		req.Method = nethttp.MethodGet
	}
	return &Request{req: req}
}

// WithPath sets the path resolved against the base URL.
func (r *Request) WithPath(path string) *Request {
	r.path = path
	r.hasPath = true
	return r
}

// WithQueryParams replaces the query parameters appended before sending.
func (r *Request) WithQueryParams(params map[string]string) *Request {
	r.queryParams = maps.Clone(params)
	return r
}

// WithQueryParam adds one query parameter.
func (r *Request) WithQueryParam(key, value string) *Request {
	if r.queryParams == nil {
		r.queryParams = make(map[string]string)
	}
	r.queryParams[key] = value
	return r
}

// WithJSONBody sets a value serialized as the request body with Content-Type application/json.
func (r *Request) WithJSONBody(body any) *Request {
	r.jsonBody = body
	r.hasJSONBody = true
	return r
}

// WithRetryPolicy overrides the client's default retry policy for this request.
func (r *Request) WithRetryPolicy(policy RetryPolicy) *Request {
	r.retryPolicy = &policy
	return r
}

// WithHeader sets a header. An invalid name or value is reported by Execute.
func (r *Request) WithHeader(name, value string) *Request {
	if err := r.AddHeader(name, value); err != nil && r.err == nil {
		r.err = err
	}
	return r
}

// WithBody sets a raw body. Bodies from *bytes.Buffer, *bytes.Reader and
// *strings.Reader can be replayed on retry; any other reader makes the request
// unclonable and Execute fails with a clone error.
func (r *Request) WithBody(body io.Reader) *Request {
	setBody(r.req, body)
	return r
}

// AddHeader sets a header after checking that name and value are valid HTTP fields.
func (r *Request) AddHeader(name, value string) error {
	if !validHeader(name, value) {
		return NewValidationError(fmt.Sprintf("invalid header %q", name), "header")
	}
	r.req.Header.Set(name, value)
	return nil
}

// SetHeader sets a header without validation.
func (r *Request) SetHeader(name, value string) {
	r.req.Header.Set(name, value)
}

// SetURL replaces the outbound URL. Interceptors use it to redirect a request.
func (r *Request) SetURL(u *url.URL) {
	r.req.URL = u
	r.req.Host = ""
}

// SetContext replaces the request context.
func (r *Request) SetContext(ctx context.Context) {
	r.req = r.req.WithContext(ctx)
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.req.Method }

// URL returns the current outbound URL.
func (r *Request) URL() *url.URL { return r.req.URL }

// Header returns the live header map.
func (r *Request) Header() nethttp.Header { return r.req.Header }

// Context returns the request context.
func (r *Request) Context() context.Context { return r.req.Context() }

// HTTP returns the wrapped request.
func (r *Request) HTTP() *nethttp.Request { return r.req }

// Path returns the relative path, if one was set.
func (r *Request) Path() (string, bool) { return r.path, r.hasPath }

// QueryParams returns a copy of the pending query parameters.
func (r *Request) QueryParams() map[string]string { return maps.Clone(r.queryParams) }

// RetryPolicy returns the request-level retry policy, if any.
func (r *Request) RetryPolicy() (RetryPolicy, bool) {
	if r.retryPolicy == nil {
		return RetryPolicy{}, false
	}
	return *r.retryPolicy, true
}

// Err returns the first error recorded by a chained setter.
func (r *Request) Err() error { return r.err }

// working returns the copy the pipeline mutates, bound to ctx.
func (r *Request) working(ctx context.Context) *Request {
	w := *r
	w.req = r.req.Clone(ctx)
	w.queryParams = maps.Clone(r.queryParams)
	return &w
}

// applyQuery appends the query parameters onto the current URL.
func (r *Request) applyQuery() {
	if len(r.queryParams) == 0 {
		return
	}
	if r.req.URL == nil {
		r.req.URL = &url.URL{}
	}
	appendQuery(r.req.URL, r.queryParams)
}

// applyJSONBody serializes the JSON body once and installs it as a replayable body.
func (r *Request) applyJSONBody() ([]byte, error) {
	if !r.hasJSONBody {
		return nil, nil
	}
	payload, err := encodeJSON(r.jsonBody)
	if err != nil {
		return nil, NewSerializationError("failed to encode JSON request body", err)
	}
	setBody(r.req, bytes.NewReader(payload))
	r.req.Header.Set(headerContentType, contentTypeJSON)
	return payload, nil
}

// encodeJSON marshals v compactly and leaves <, > and & unescaped.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// setBody installs body the way http.NewRequest does, including GetBody for replayable readers.
func setBody(req *nethttp.Request, body io.Reader) {
	if body == nil {
		req.Body = nil
		req.GetBody = nil
		req.ContentLength = 0
		return
	}

	rc, ok := body.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(body)
	}
	req.Body = rc
	req.GetBody = nil

	switch v := body.(type) {
	case *bytes.Buffer:
		buf := v.Bytes()
		req.ContentLength = int64(len(buf))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	case *bytes.Reader:
		req.ContentLength = int64(v.Len())
		snapshot := *v
		req.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	case *strings.Reader:
		req.ContentLength = int64(v.Len())
		snapshot := *v
		req.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	default:
		req.ContentLength = -1
	}

	if req.GetBody != nil && req.ContentLength == 0 {
		req.Body = nethttp.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return nethttp.NoBody, nil }
	}
}

// cloneForAttempt produces the request sent by one attempt.
// A body without GetBody cannot be replayed, so such a request is never sent.
func cloneForAttempt(ctx context.Context, req *nethttp.Request) (*nethttp.Request, error) {
	attempt := req.Clone(ctx)
	if req.Body == nil || req.Body == nethttp.NoBody {
		return attempt, nil
	}
	if req.GetBody == nil {
		return nil, NewCloneError("request body cannot be replayed", nil)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, NewCloneError("failed to reopen request body", err)
	}
	attempt.Body = body
	return attempt, nil
}

// bodyPreview returns up to limit bytes of a replayable body for payload logging.
func bodyPreview(req *nethttp.Request, limit int) ([]byte, int64) {
	if req.GetBody == nil || limit <= 0 {
		return nil, req.ContentLength
	}
	rc, err := req.GetBody()
	if err != nil {
		return nil, req.ContentLength
	}
	defer rc.Close()
	preview, _ := io.ReadAll(io.LimitReader(rc, int64(limit)))
	return preview, req.ContentLength
}
