package httpclient

import (
	"net/url"
	"slices"
	"strings"
)

// parseBaseURL validates a client base URL. It must be absolute with a host.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewConfigurationError("invalid base URL", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, NewConfigurationError("base URL must be absolute: "+raw, nil)
	}
	return u, nil
}

// resolveURL joins path onto base using RFC 3986 reference resolution.
// An absolute path wins over the base; with no base the path is parsed on its own.
func resolveURL(base *url.URL, path string) (*url.URL, error) {
	if base == nil {
		u, err := url.Parse(path)
		if err != nil {
			return nil, NewConfigurationError("invalid request URL", err)
		}
		return u, nil
	}
	u, err := base.Parse(path)
	if err != nil {
		return nil, NewConfigurationError("failed to join base URL and path", err)
	}
	return u, nil
}

// appendQuery adds params to u's query string, keeping any pairs already present.
func appendQuery(u *url.URL, params map[string]string) {
	if len(params) == 0 {
		return
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	u.RawQuery = b.String()
	u.ForceQuery = false
}

func isAbsoluteURL(u *url.URL) bool {
	return u != nil && u.IsAbs() && u.Host != ""
}
