// Package httpclient provides a REST client built on net/http that resolves
// request paths against a base URL, runs request and response interceptors,
// applies query parameters and JSON bodies exactly once, and retries transport
// failures with a fixed backoff.
//
// Typical use:
//
//	client, err := httpclient.NewBuilder(log).
//		WithBaseURL("https://api.example.com/v1/").
//		WithDefaultRetryPolicy(httpclient.NewRetryPolicy(3, 100*time.Millisecond)).
//		WithRequestInterceptor(httpclient.NewTraceIDInterceptor()).
//		Build()
//	if err != nil {
//		return err
//	}
//
//	req := httpclient.NewRequest(http.MethodGet, "users/42").WithQueryParam("active", "true")
//	resp, err := client.Execute(ctx, req)
//	if err != nil {
//		return err
//	}
//	user, err := httpclient.DecodeJSON[User](resp)
//
// Base URLs follow RFC 3986 reference resolution: "https://api.example.com/v1/"
// joined with "users/42" yields "https://api.example.com/v1/users/42", while a
// base without the trailing slash replaces its last segment.
package httpclient
