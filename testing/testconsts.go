package testing

// Logger Constants
// Common logger levels used across test files.
const (
	TestLoggerLevelDebug    = "debug"
	TestLoggerLevelError    = "error"
	TestLoggerLevelDisabled = "disabled"
)

// HTTP Constants
// Common header names and values used by client tests.
const (
	TestServiceName     = "test-service"
	TestAPIKeyHeader    = "X-API-Key"
	TestAPIKeyValue     = "test-key"
	TestUserAgentHeader = "User-Agent"
	TestUserAgentValue  = "relay-test/1.0"
	TestTraceID         = "custom-trace-123"
	TestContentType     = "Content-Type"
	TestJSONContentType = "application/json"
)

// URL Constants
// The base URL and path used by URL resolution scenarios.
const (
	TestBaseURL     = "https://api.example.com/v1/"
	TestUserPath    = "users/42"
	TestResolvedURL = "https://api.example.com/v1/users/42?active=true"
)
