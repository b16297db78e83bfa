// Package fixtures provides an HTTP test server for exercising REST clients end to end.
package fixtures

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the service name server spans are recorded under.
const ServiceName = "relay-fixtures"

// Fixture routes.
const (
	EchoPath    = "/echo"
	StatusPath  = "/status/"
	HeadersPath = "/headers"
	QueryPath   = "/query"
	UsersPath   = "/users/"
	FlakyPath   = "/flaky"
	SlowPath    = "/slow"
)

// User is the payload served under UsersPath.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Server is an echo application served by httptest.
//
//	/echo          replies with the request body and Content-Type
//	/status/:code  replies with the given status code
//	/headers       replies with the request headers as a JSON object keyed by canonical name
//	/query         replies with the query parameters as a JSON object of arrays
//	/users/:id     replies with a User
//	/flaky         drops the connection for the next FailNext requests, then replies 200
//	/slow?delay=d  waits d before replying 200
type Server struct {
	*httptest.Server
	Echo *echo.Echo

	failuresLeft atomic.Int64
	flakyHits    atomic.Int64
}

// Option configures a fixture server.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
}

// WithTracerProvider records a server span per request, continuing any W3C
// traceparent the client sent.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// NewServer starts a fixture server that is closed when the test ends.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if o.tracerProvider != nil {
		e.Use(otelecho.Middleware(ServiceName,
			otelecho.WithTracerProvider(o.tracerProvider),
			otelecho.WithPropagators(propagation.TraceContext{}),
		))
	}

	s := &Server{Echo: e}
	e.Any(EchoPath, s.echoBody)
	e.Any(StatusPath+":code", s.status)
	e.GET(HeadersPath, s.headers)
	e.GET(QueryPath, s.query)
	e.GET(UsersPath+":id", s.user)
	e.Any(FlakyPath, s.flaky)
	e.GET(SlowPath, s.slow)

	s.Server = httptest.NewServer(e)
	tb.Cleanup(s.Close)
	return s
}

// FailNext makes the next n requests to /flaky fail at the transport level.
func (s *Server) FailNext(n int) {
	s.failuresLeft.Store(int64(n))
}

// FlakyHits returns how many requests reached /flaky, failed ones included.
func (s *Server) FlakyHits() int {
	return int(s.flakyHits.Load())
}

// BaseURL returns the server URL with a trailing slash, ready for relative paths.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

func (s *Server) echoBody(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, body)
}

func (s *Server) status(c echo.Context) error {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 200 || code > 999 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status code")
	}
	if code == http.StatusNoContent || code == http.StatusNotModified {
		return c.NoContent(code)
	}
	return c.Blob(code, echo.MIMETextPlainCharsetUTF8, []byte(strconv.Itoa(code)))
}

func (s *Server) headers(c echo.Context) error {
	out := make(map[string]string, len(c.Request().Header))
	for k, v := range c.Request().Header {
		out[k] = strings.Join(v, ", ")
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) query(c echo.Context) error {
	return c.JSON(http.StatusOK, c.QueryParams())
}

func (s *Server) user(c echo.Context) error {
	return c.JSON(http.StatusOK, User{ID: c.Param("id"), Name: "Alice"})
}

func (s *Server) flaky(c echo.Context) error {
	hit := s.flakyHits.Add(1)
	if s.failuresLeft.Add(-1) >= 0 {
		conn, _, err := http.NewResponseController(c.Response().Writer).Hijack()
		if err != nil {
			return err
		}
		return conn.Close()
	}
	return c.JSON(http.StatusOK, map[string]int64{"hits": hit})
}

func (s *Server) slow(c echo.Context) error {
	delay, err := time.ParseDuration(c.QueryParam("delay"))
	if err != nil {
		delay = 100 * time.Millisecond
	}
	select {
	case <-time.After(delay):
		return c.NoContent(http.StatusOK)
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}
