// Package testing holds shared constants for tests across the module.
//
// Subpackages:
//   - fixtures: an echo-based HTTP server exposing echo, status, header, query,
//     slow and flaky endpoints for exercising the REST client end to end
//   - mocks: testify-based http.RoundTripper mocks and a scripted flaky transport
package testing
