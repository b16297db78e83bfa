package httpclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-relay/config"
	"github.com/gaborage/go-relay/testing/mocks"
)

func TestNewBuilderFromConfig(t *testing.T) {
	cfg := config.ClientConfig{
		BaseURL:            testBaseURL,
		Timeout:            5 * time.Second,
		Headers:            map[string]string{testAPIKey: testAPIValue},
		Retry:              config.RetryConfig{MaxAttempts: 3, Backoff: 10 * time.Millisecond},
		RateLimit:          config.RateLimitConfig{RPS: 50, Burst: 5},
		LogPayloads:        true,
		MaxPayloadLogBytes: 256,
	}

	c := builtClient(t, NewBuilderFromConfig(nil, cfg))
	assert.Equal(t, testBaseURL, c.baseURL.String())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, NewRetryPolicy(3, 10*time.Millisecond), *c.defaultRetry)
	require.NotNil(t, c.limiter)
	assert.Equal(t, 5, c.limiter.Burst())
	assert.True(t, c.logPayloads)
	assert.Equal(t, 256, c.maxPayloadLogBytes)
}

func TestNewBuilderFromLoadedConfig(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(`
client:
  baseurl: https://api.example.com/v1/
  headers:
    X-API-Key: test-key
  retry:
    maxattempts: 2
    backoff: 1ms
`))
	require.NoError(t, err)

	transport := mocks.NewFlakyTransport(1)
	b := NewBuilderFromConfig(createTestLogger(), cfg.Client).WithTransport(transport)
	c := builtClient(t, b)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)

	var client Client = c

	resp, err := client.Get(context.Background(), testUserPath)
	require.NoError(t, err)
	_ = resp.Close()

	assert.Equal(t, 2, transport.Calls())
	assert.Equal(t, testAPIValue, transport.Requests()[1].Header.Get(testAPIKey))
}
