package httpclient

import (
	"bytes"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxPayloadLogBytes caps logged body previews when payload logging is enabled.
	DefaultMaxPayloadLogBytes = 1024

	msgRequest         = "REST client request"
	msgResponse        = "REST client response"
	msgRequestPayload  = "REST client request payload"
	msgResponsePayload = "REST client response payload"
	msgRetry           = "REST client retrying request"
	msgFailure         = "REST client request failed"
)

func (c *client) logRequest(req *Request) {
	h := req.Header()
	event := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method()).
		Str("url", redactURL(req.URL())).
		Int("header_count", len(h)).
		Int64("body_size", req.HTTP().ContentLength)
	if id := h.Get(HeaderXRequestID); id != "" {
		event.Str("request_id", id)
	}
	event.Msg(msgRequest)

	if !c.logPayloads {
		return
	}
	payload := c.logger.Debug().
		Str("direction", "outbound").
		Interface("headers", flattenHeader(h))
	if preview, size := bodyPreview(req.HTTP(), c.maxPayloadLogBytes); len(preview) > 0 {
		payload.Str("body_preview", string(preview)).
			Str("body_truncated", strconv.FormatBool(size > int64(len(preview)) || size < 0))
	}
	payload.Msg(msgRequestPayload)
}

func (c *client) logRetry(req *Request, attempt int, policy RetryPolicy, err error) {
	c.logger.Warn().
		Err(err).
		Str("method", req.Method()).
		Str("url", redactURL(req.URL())).
		Int("attempt", attempt).
		Int("max_attempts", policy.MaxAttempts).
		Dur("backoff", policy.Backoff).
		Msg(msgRetry)
}

func (c *client) logFailure(req *Request, attempts int, elapsed time.Duration, err error) {
	c.logger.Error().
		Err(err).
		Str("direction", "outbound").
		Str("method", req.Method()).
		Str("url", redactURL(req.URL())).
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Msg(msgFailure)
}

// logResponse logs the inbound response. With payload logging on, only the
// preview is read ahead; the body handed to the caller replays it and then
// continues from the wire.
func (c *client) logResponse(method string, resp *Response) {
	c.logger.Info().
		Str("direction", "inbound").
		Str("method", method).
		Str("url", redactURL(resp.URL())).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.stats.ElapsedTime).
		Int("attempts", resp.stats.Attempts).
		Int64("call_count", resp.stats.CallCount).
		Msg(msgResponse)

	if !c.logPayloads {
		return
	}
	payload := c.logger.Debug().
		Str("direction", "inbound").
		Interface("headers", flattenHeader(resp.Header()))

	raw := resp.Raw()
	if raw.Body != nil && !resp.Consumed() {
		prefix, err := io.ReadAll(io.LimitReader(raw.Body, int64(c.maxPayloadLogBytes)+1))
		raw.Body = &peekedBody{
			Reader: io.MultiReader(bytes.NewReader(prefix), raw.Body),
			Closer: raw.Body,
		}
		if err != nil {
			payload.Err(err)
		}
		if len(prefix) > 0 {
			preview, truncated := truncate(prefix, c.maxPayloadLogBytes)
			payload.Str("body_preview", preview).
				Str("body_truncated", strconv.FormatBool(truncated))
		}
	}
	payload.Msg(msgResponsePayload)
}

// peekedBody reads the logged prefix first and closes the original body.
type peekedBody struct {
	io.Reader
	io.Closer
}

func truncate(body []byte, limit int) (string, bool) {
	if limit <= 0 || len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}

func flattenHeader(h nethttp.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}
