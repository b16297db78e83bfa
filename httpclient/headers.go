package httpclient

import (
	"maps"
	nethttp "net/http"

	"golang.org/x/net/http/httpguts"
)

// Headers maps header names to single values. Names are canonicalized when converted.
type Headers map[string]string

// NewHeaders creates an empty header set.
func NewHeaders() Headers {
	return make(Headers)
}

// Set stores value under name, replacing any earlier value with the same canonical name.
func (h Headers) Set(name, value string) Headers {
	canonical := nethttp.CanonicalHeaderKey(name)
	for k := range h {
		if k != canonical && nethttp.CanonicalHeaderKey(k) == canonical {
			delete(h, k)
		}
	}
	h[canonical] = value
	return h
}

// Get returns the value stored under name, compared case-insensitively.
func (h Headers) Get(name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	canonical := nethttp.CanonicalHeaderKey(name)
	for k, v := range h {
		if nethttp.CanonicalHeaderKey(k) == canonical {
			return v
		}
	}
	return ""
}

// Clone returns an independent copy. A nil set clones to nil.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return maps.Clone(h)
}

// ToHTTP converts the set to net/http form.
// Entries whose name or value is not a valid HTTP field are skipped.
func (h Headers) ToHTTP() nethttp.Header {
	out := make(nethttp.Header, len(h))
	for k, v := range h {
		if !validHeader(k, v) {
			continue
		}
		out.Set(k, v)
	}
	return out
}

func validHeader(name, value string) bool {
	return httpguts.ValidHeaderFieldName(name) && httpguts.ValidHeaderFieldValue(value)
}

func validMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, r := range method {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}
