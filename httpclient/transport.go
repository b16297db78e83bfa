package httpclient

import (
	nethttp "net/http"
)

// defaultHeaderTransport adds the client's default headers at send time.
// Headers already on the outbound request are never overridden.
type defaultHeaderTransport struct {
	base    nethttp.RoundTripper
	headers nethttp.Header
}

func newDefaultHeaderTransport(base nethttp.RoundTripper, headers Headers) nethttp.RoundTripper {
	if base == nil {
		base = nethttp.DefaultTransport
	}
	if len(headers) == 0 {
		return base
	}
	return &defaultHeaderTransport{base: base, headers: headers.ToHTTP()}
}

func (t *defaultHeaderTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	var missing []string
	for k := range t.headers {
		if _, ok := req.Header[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	for _, k := range missing {
		out.Header[k] = append([]string(nil), t.headers[k]...)
	}
	return t.base.RoundTrip(out)
}
