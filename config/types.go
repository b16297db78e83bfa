package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-relay/observability"
)

// Config is the root configuration for a relay client process.
type Config struct {
	Client        ClientConfig         `koanf:"client" json:"client" yaml:"client"`
	Log           LogConfig            `koanf:"log" json:"log" yaml:"log"`
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability" validate:"-"`

	// k keeps the loaded sources for raw key access.
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// ClientConfig configures a REST client built by httpclient.NewBuilderFromConfig.
type ClientConfig struct {
	// BaseURL is resolved against each request path. Empty means requests carry absolute URLs.
	BaseURL string            `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"omitempty,url"`
	Timeout time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
	Headers map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	Retry   RetryConfig       `koanf:"retry" json:"retry" yaml:"retry"`

	RateLimit RateLimitConfig `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`

	// LogPayloads enables debug events with headers and a body preview.
	LogPayloads        bool `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads"`
	MaxPayloadLogBytes int  `koanf:"maxpayloadlogbytes" json:"maxpayloadlogbytes" yaml:"maxpayloadlogbytes" validate:"gte=0"`
}

// RetryConfig is the client-wide default retry policy.
type RetryConfig struct {
	MaxAttempts int           `koanf:"maxattempts" json:"maxattempts" yaml:"maxattempts" validate:"gte=1"`
	Backoff     time.Duration `koanf:"backoff" json:"backoff" yaml:"backoff" validate:"gte=0"`
}

// RateLimitConfig throttles outbound attempts. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" json:"rps" yaml:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// Exists reports whether key was set by any source.
func (c *Config) Exists(key string) bool {
	if c.k == nil {
		return false
	}
	return c.k.Exists(key)
}

// String returns the raw string value for key, or def when unset.
func (c *Config) String(key, def string) string {
	if !c.Exists(key) {
		return def
	}
	return c.k.String(key)
}
