package httpclient

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gaborage/go-relay/logger"
	"github.com/gaborage/go-relay/status"
	"github.com/gaborage/go-relay/testing/mocks"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func newFlakyClient(t *testing.T, transport nethttp.RoundTripper, opts ...func(*Builder)) Client {
	t.Helper()
	b := NewBuilder(createTestLogger()).
		WithBaseURL(testBaseURL).
		WithTransport(transport)
	for _, opt := range opts {
		opt(b)
	}
	return mustBuild(t, b)
}

func TestExecuteResolvesBaseURLAndQuery(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport)

	req := NewRequest(nethttp.MethodGet, testUserPath).WithQueryParams(map[string]string{"active": "true"})
	resp, err := client.Execute(context.Background(), req)
	require.NoError(t, err)
	defer resp.Close()

	require.Equal(t, 1, transport.Calls())
	assert.Equal(t, testResolvedURL, transport.Requests()[0].URL)
	assert.Equal(t, testResolvedURL, resp.URL().String())
}

func TestExecuteURLResolution(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		query    map[string]string
		expected string
	}{
		{
			name:     "empty path resolves to base",
			path:     "",
			expected: "https://api.example.com/v1/",
		},
		{
			name:     "empty path keeps query params",
			path:     "",
			query:    map[string]string{"page": "1"},
			expected: "https://api.example.com/v1/?page=1",
		},
		{
			name:     "preserves existing query pairs",
			path:     "users/42?sort=asc",
			query:    map[string]string{"active": "true"},
			expected: "https://api.example.com/v1/users/42?sort=asc&active=true",
		},
		{
			name:     "absolute path wins over base",
			path:     "https://other.example.com/ping",
			expected: "https://other.example.com/ping",
		},
		{
			name:     "root-relative path replaces base path",
			path:     "/health",
			expected: "https://api.example.com/health",
		},
		{
			name:     "escapes query values",
			path:     "search",
			query:    map[string]string{"q": "a b&c"},
			expected: "https://api.example.com/v1/search?q=a+b%26c",
		},
		{
			name:     "multiple params are appended in key order",
			path:     "items",
			query:    map[string]string{"b": "2", "a": "1"},
			expected: "https://api.example.com/v1/items?a=1&b=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewFlakyTransport(0)
			client := newFlakyClient(t, transport)

			resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, tt.path).WithQueryParams(tt.query))
			require.NoError(t, err)
			_ = resp.Close()

			assert.Equal(t, tt.expected, transport.Requests()[0].URL)
		})
	}
}

func TestGetWithEmptyPathHitsBaseURL(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport)

	resp, err := client.Get(context.Background(), "")
	require.NoError(t, err)
	_ = resp.Close()

	require.Len(t, transport.Requests(), 1)
	assert.Equal(t, testBaseURL, transport.Requests()[0].URL)
}

func TestExecuteQueryIsSupersetOfParams(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport)
	params := map[string]string{"active": "true", "page": "2", "name": "Ann Lee"}

	resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, "users?existing=1").WithQueryParams(params))
	require.NoError(t, err)
	_ = resp.Close()

	u, err := url.Parse(transport.Requests()[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "/v1/users", u.Path)
	q := u.Query()
	assert.Equal(t, "1", q.Get("existing"))
	for k, v := range params {
		assert.Equal(t, v, q.Get(k))
	}
}

func TestExecuteAlwaysFailingTransportMakesExactlyMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 4} {
		transport := mocks.NewFailingTransport()
		client := newFlakyClient(t, transport)

		req := NewRequest(nethttp.MethodGet, testUserPath).WithRetryPolicy(NewRetryPolicy(maxAttempts, 0))
		resp, err := client.Execute(context.Background(), req)

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, maxAttempts, transport.Calls())
		assert.True(t, IsErrorType(err, NetworkError))
		assert.True(t, IsRetryable(err))

		// The surfaced error is the final attempt's error.
		assert.Contains(t, err.Error(), "attempt "+strconv.Itoa(maxAttempts)+":")
		attempts, ok := AttemptsFromError(err)
		require.True(t, ok)
		assert.Equal(t, maxAttempts, attempts)
	}
}

func TestExecuteSucceedsOnAttemptK(t *testing.T) {
	const maxAttempts = 5
	for k := 1; k <= maxAttempts; k++ {
		transport := mocks.NewFlakyTransport(k - 1)
		client := newFlakyClient(t, transport)

		req := NewRequest(nethttp.MethodGet, testUserPath).WithRetryPolicy(NewRetryPolicy(maxAttempts, 0))
		resp, err := client.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, k, transport.Calls())
		assert.Equal(t, k, resp.Stats().Attempts)
		assert.Equal(t, status.OK, resp.Status())
		_ = resp.Close()
	}
}

func TestExecuteDefaultRetryPolicyBackoff(t *testing.T) {
	transport := mocks.NewFlakyTransport(2)
	client := newFlakyClient(t, transport, func(b *Builder) {
		b.WithDefaultRetryPolicy(NewRetryPolicy(3, 10*time.Millisecond))
	})

	start := time.Now()
	resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
	elapsed := time.Since(start)
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, 3, transport.Calls())
	assert.Equal(t, 3, resp.Stats().Attempts)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestExecuteRetryPolicyPrecedence(t *testing.T) {
	t.Run("request policy overrides client default", func(t *testing.T) {
		transport := mocks.NewFailingTransport()
		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithDefaultRetryPolicy(NewRetryPolicy(5, 0))
		})
		_, err := client.Execute(context.Background(),
			NewRequest(nethttp.MethodGet, testUserPath).WithRetryPolicy(NewRetryPolicy(2, 0)))
		require.Error(t, err)
		assert.Equal(t, 2, transport.Calls())
	})

	t.Run("no policy means one attempt", func(t *testing.T) {
		transport := mocks.NewFailingTransport()
		client := newFlakyClient(t, transport)
		_, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
		require.Error(t, err)
		assert.Equal(t, 1, transport.Calls())
	})

	t.Run("zero max attempts is treated as one", func(t *testing.T) {
		transport := mocks.NewFailingTransport()
		client := newFlakyClient(t, transport)
		_, err := client.Execute(context.Background(),
			NewRequest(nethttp.MethodGet, testUserPath).WithRetryPolicy(NewRetryPolicy(0, 0)))
		require.Error(t, err)
		assert.Equal(t, 1, transport.Calls())
	})
}

func TestExecuteJSONEchoRoundTrip(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport)

	req := NewRequest(nethttp.MethodPost, "echo").WithJSONBody(map[string]any{"a": 1})
	resp, err := client.Execute(context.Background(), req)
	require.NoError(t, err)

	got, err := DecodeJSON[map[string]any](resp)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)

	_, err = resp.Bytes()
	assert.ErrorIs(t, err, ErrBodyConsumed)
	_, err = resp.Text()
	assert.ErrorIs(t, err, ErrBodyConsumed)

	recorded := transport.Requests()[0]
	assert.JSONEq(t, `{"a":1}`, string(recorded.Body))
	assert.Equal(t, testJSONType, recorded.Header.Get(testContentType))
}

func TestExecuteAppliesQueryAndBodyOnceAcrossRetries(t *testing.T) {
	transport := mocks.NewFlakyTransport(2)
	client := newFlakyClient(t, transport)

	req := NewRequest(nethttp.MethodPost, testUserPath).
		WithQueryParam("active", "true").
		WithJSONBody(map[string]int{"a": 1}).
		WithRetryPolicy(NewRetryPolicy(3, 0))
	resp, err := client.Execute(context.Background(), req)
	require.NoError(t, err)
	_ = resp.Close()

	requests := transport.Requests()
	require.Len(t, requests, 3)
	for _, r := range requests {
		assert.Equal(t, testResolvedURL, r.URL)
		assert.JSONEq(t, `{"a":1}`, string(r.Body))
	}

	// Executing the same descriptor again yields the same outbound request.
	resp, err = client.Execute(context.Background(), req)
	require.NoError(t, err)
	_ = resp.Close()
	assert.Equal(t, testResolvedURL, transport.Requests()[3].URL)
}

func TestExecuteReplayableRawBody(t *testing.T) {
	transport := mocks.NewFlakyTransport(2)
	client := newFlakyClient(t, transport)

	req := NewRequest(nethttp.MethodPut, testUserPath).
		WithBody(strings.NewReader("payload")).
		WithRetryPolicy(NewRetryPolicy(3, 0))
	resp, err := client.Execute(context.Background(), req)
	require.NoError(t, err)

	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "payload", text)
	for _, r := range transport.Requests() {
		assert.Equal(t, "payload", string(r.Body))
	}
}

func TestExecuteUnclonableBodyFailsWithoutSending(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport)

	stream := io.MultiReader(strings.NewReader("chunk-1"), strings.NewReader("chunk-2"))
	req := NewRequest(nethttp.MethodPost, testUserPath).
		WithBody(stream).
		WithRetryPolicy(NewRetryPolicy(3, 0))
	_, err := client.Execute(context.Background(), req)

	require.Error(t, err)
	assert.True(t, IsErrorType(err, CloneError))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, 0, transport.Calls())
}

func TestExecuteConfigurationErrors(t *testing.T) {
	t.Run("relative path without base URL", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		client := mustBuild(t, NewBuilder(createTestLogger()).WithTransport(transport))

		_, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ConfigurationError))
		assert.Equal(t, 0, transport.Calls())
	})

	t.Run("unparseable path", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithDefaultRetryPolicy(NewRetryPolicy(3, 0))
		})

		_, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, "users/%zz"))
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ConfigurationError))
		assert.Equal(t, 0, transport.Calls())
	})

	t.Run("absolute path without base URL", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		client := mustBuild(t, NewBuilder(createTestLogger()).WithTransport(transport))

		resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testExampleAPIURL+"ping"))
		require.NoError(t, err)
		_ = resp.Close()
		assert.Equal(t, testExampleAPIURL+"ping", transport.Requests()[0].URL)
	})

	t.Run("unencodable JSON body", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		client := newFlakyClient(t, transport)

		_, err := client.Execute(context.Background(), NewRequest(nethttp.MethodPost, "echo").WithJSONBody(make(chan int)))
		require.Error(t, err)
		assert.True(t, IsErrorType(err, SerializationError))
		assert.Equal(t, 0, transport.Calls())
	})
}

func TestExecuteValidation(t *testing.T) {
	client := newFlakyClient(t, mocks.NewFlakyTransport(0))

	_, err := client.Execute(context.Background(), nil)
	assert.True(t, IsErrorType(err, ValidationError))

	_, err = client.Execute(context.Background(), NewRequest("GE T", testUserPath))
	assert.True(t, IsErrorType(err, ValidationError))

	_, err = client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath).WithHeader("Bad Header", "v"))
	assert.True(t, IsErrorType(err, ValidationError))
}

func TestExecuteRequestInterceptors(t *testing.T) {
	t.Run("run in order before query and body", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		var seen []string
		first := RequestInterceptorFunc(func(_ context.Context, req *Request) error {
			seen = append(seen, "first")
			assert.Equal(t, "https://api.example.com/v1/users/42", req.URL().String())
			assert.Empty(t, req.URL().RawQuery)
			assert.Nil(t, req.HTTP().Body)
			req.Header().Add(testIntercepted, "1")
			req.SetHeader(testContentType, "text/plain")
			return nil
		})
		second := RequestInterceptorFunc(func(_ context.Context, req *Request) error {
			seen = append(seen, "second")
			assert.Equal(t, "1", req.Header().Get(testIntercepted))
			req.Header().Add(testIntercepted, "2")
			return nil
		})

		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithRequestInterceptor(first).WithRequestInterceptor(second)
		})
		req := NewRequest(nethttp.MethodPost, testUserPath).
			WithQueryParam("active", "true").
			WithJSONBody(map[string]int{"a": 1})
		resp, err := client.Execute(context.Background(), req)
		require.NoError(t, err)
		_ = resp.Close()

		assert.Equal(t, []string{"first", "second"}, seen)
		recorded := transport.Requests()[0]
		assert.Equal(t, []string{"1", "2"}, recorded.Header.Values(testIntercepted))
		assert.Equal(t, testJSONType, recorded.Header.Get(testContentType))
		assert.Equal(t, testResolvedURL, recorded.URL)
	})

	t.Run("may rewrite the URL", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		redirect := RequestInterceptorFunc(func(_ context.Context, req *Request) error {
			u := *req.URL()
			u.Host = "mirror.example.com"
			req.SetURL(&u)
			return nil
		})
		client := newFlakyClient(t, transport, func(b *Builder) { b.WithRequestInterceptor(redirect) })

		resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath).WithQueryParam("active", "true"))
		require.NoError(t, err)
		_ = resp.Close()
		assert.Equal(t, "https://mirror.example.com/v1/users/42?active=true", transport.Requests()[0].URL)
	})

	t.Run("failure aborts without sending or retrying", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		boom := errors.New("no credentials")
		failing := RequestInterceptorFunc(func(context.Context, *Request) error { return boom })
		var reached bool
		after := RequestInterceptorFunc(func(context.Context, *Request) error { reached = true; return nil })

		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithRequestInterceptor(failing).
				WithRequestInterceptor(after).
				WithDefaultRetryPolicy(NewRetryPolicy(3, 0))
		})
		_, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.True(t, IsErrorType(err, InterceptorError))
		stage, ok := StageFromError(err)
		require.True(t, ok)
		assert.Equal(t, "request", stage)
		assert.False(t, reached)
		assert.Equal(t, 0, transport.Calls())
	})

	t.Run("invalid header set with WithHeader aborts", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		badHeader := RequestInterceptorFunc(func(_ context.Context, req *Request) error {
			req.WithHeader("Bad Header", "x")
			return nil
		})
		var reached bool
		after := RequestInterceptorFunc(func(context.Context, *Request) error { reached = true; return nil })

		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithRequestInterceptor(badHeader).WithRequestInterceptor(after)
		})
		req := NewRequest(nethttp.MethodGet, testUserPath)
		_, err := client.Execute(context.Background(), req)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, InterceptorError))
		assert.Contains(t, err.Error(), "Bad Header")
		stage, ok := StageFromError(err)
		require.True(t, ok)
		assert.Equal(t, "request", stage)
		assert.False(t, reached)
		assert.Equal(t, 0, transport.Calls())
		assert.NoError(t, req.Err())
	})
}

func TestExecuteResponseInterceptors(t *testing.T) {
	t.Run("run in order and may mutate the response", func(t *testing.T) {
		var order []int
		mark := func(n int) ResponseInterceptor {
			return ResponseInterceptorFunc(func(_ context.Context, resp *Response) error {
				order = append(order, n)
				resp.Header().Add(testIntercepted, strconv.Itoa(n))
				return nil
			})
		}
		client := newFlakyClient(t, mocks.NewFlakyTransport(0), func(b *Builder) {
			b.WithResponseInterceptor(mark(1)).WithResponseInterceptor(mark(2))
		})

		resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
		require.NoError(t, err)
		defer resp.Close()

		assert.Equal(t, []int{1, 2}, order)
		assert.Equal(t, []string{"1", "2"}, resp.Header().Values(testIntercepted))
	})

	t.Run("failure is not retried", func(t *testing.T) {
		transport := mocks.NewFlakyTransport(0)
		boom := errors.New("schema check failed")
		client := newFlakyClient(t, transport, func(b *Builder) {
			b.WithResponseInterceptor(ResponseInterceptorFunc(func(context.Context, *Response) error { return boom })).
				WithDefaultRetryPolicy(NewRetryPolicy(3, 0))
		})

		resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, boom)
		stage, _ := StageFromError(err)
		assert.Equal(t, "response", stage)
		assert.Equal(t, 1, transport.Calls())
	})
}

func TestExecuteHTTPStatusIsNotRetried(t *testing.T) {
	rt := &mocks.MockRoundTripper{}
	rt.ExpectRoundTripFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		return mocks.NewResponse(nethttp.StatusInternalServerError, "boom"), nil
	}).Once()

	client := newFlakyClient(t, rt, func(b *Builder) { b.WithDefaultRetryPolicy(NewRetryPolicy(3, 0)) })
	resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
	require.NoError(t, err)

	assert.Equal(t, status.InternalServerError, resp.Status())
	assert.True(t, resp.Status().IsServerError())
	err = resp.EnsureSuccess()
	assert.True(t, IsHTTPStatusError(err, nethttp.StatusInternalServerError))
	body, ok := HTTPErrorBody(err)
	require.True(t, ok)
	assert.Equal(t, "boom", string(body))
	rt.AssertExpectations(t)
}

func TestExecuteTimeoutClassification(t *testing.T) {
	transport := &mocks.FlakyTransport{
		Failures: 2,
		Err:      func(int) error { return timeoutNetError{} },
	}
	client := newFlakyClient(t, transport)

	_, err := client.Execute(context.Background(),
		NewRequest(nethttp.MethodGet, testUserPath).WithRetryPolicy(NewRetryPolicy(2, 0)))
	require.Error(t, err)
	assert.True(t, IsErrorType(err, TimeoutError))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 2, transport.Calls())
}

func TestExecuteCancellationDuringBackoff(t *testing.T) {
	transport := mocks.NewFailingTransport()
	client := newFlakyClient(t, transport, func(b *Builder) {
		b.WithDefaultRetryPolicy(NewRetryPolicy(5, time.Second))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Execute(ctx, NewRequest(nethttp.MethodGet, testUserPath))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsErrorType(err, TimeoutError))
	assert.Equal(t, 1, transport.Calls())
}

func TestExecuteRateLimitWaitFailure(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	client := newFlakyClient(t, transport, func(b *Builder) { b.WithRateLimit(0.1, 1) })

	resp, err := client.Execute(context.Background(), NewRequest(nethttp.MethodGet, testUserPath))
	require.NoError(t, err)
	_ = resp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Execute(ctx, NewRequest(nethttp.MethodGet, testUserPath))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
	assert.Equal(t, 1, transport.Calls())
}

func TestExecuteTracksCallCounters(t *testing.T) {
	client := newFlakyClient(t, mocks.NewFlakyTransport(0))
	ctx := logger.WithHTTPCounter(context.Background())

	for i := 1; i <= 2; i++ {
		resp, err := client.Execute(ctx, NewRequest(nethttp.MethodGet, testUserPath))
		require.NoError(t, err)
		assert.Equal(t, int64(i), resp.Stats().CallCount)
		_ = resp.Close()
	}
	assert.Equal(t, int64(2), logger.GetHTTPCounter(ctx))
	assert.Positive(t, logger.GetHTTPElapsed(ctx))
}

func TestExecuteConcurrentRequestsAreIndependent(t *testing.T) {
	transport := mocks.NewFlakyTransport(0)
	var interceptorCalls sync.Map
	client := newFlakyClient(t, transport, func(b *Builder) {
		b.WithRequestInterceptor(RequestInterceptorFunc(func(_ context.Context, req *Request) error {
			interceptorCalls.Store(req.Header().Get(testAPIKey), true)
			return nil
		}))
	})

	const n = 20
	counts := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			req := NewRequest(nethttp.MethodPost, "echo").
				WithHeader(testAPIKey, strconv.Itoa(i)).
				WithJSONBody(map[string]int{"i": i})
			resp, err := client.Execute(context.Background(), req)
			if err != nil {
				return err
			}
			got, err := DecodeJSON[map[string]int](resp)
			if err != nil {
				return err
			}
			if got["i"] != i {
				return errors.New("body mixed up between requests")
			}
			counts[i] = resp.Stats().CallCount
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, n)
	for _, c := range counts {
		assert.False(t, seen[c], "duplicate call count %d", c)
		seen[c] = true
	}
	assert.Equal(t, n, transport.Calls())
	for i := 0; i < n; i++ {
		_, ok := interceptorCalls.Load(strconv.Itoa(i))
		assert.True(t, ok)
	}
}

