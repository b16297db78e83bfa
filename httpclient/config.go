package httpclient

import (
	"github.com/gaborage/go-relay/config"
	"github.com/gaborage/go-relay/logger"
)

// NewBuilderFromConfig creates a builder preloaded from the client section of
// the application config. Further options may be chained before Build.
func NewBuilderFromConfig(log logger.Logger, cfg config.ClientConfig) *Builder {
	b := NewBuilder(log).
		WithTimeout(cfg.Timeout).
		WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	if cfg.BaseURL != "" {
		b.WithBaseURL(cfg.BaseURL)
	}
	if len(cfg.Headers) > 0 {
		b.WithDefaultHeaders(Headers(cfg.Headers))
	}
	if cfg.Retry.MaxAttempts > 0 {
		b.WithDefaultRetryPolicy(NewRetryPolicy(cfg.Retry.MaxAttempts, cfg.Retry.Backoff))
	}
	if cfg.LogPayloads {
		b.WithPayloadLogging(cfg.MaxPayloadLogBytes)
	}
	return b
}
