package httpclient

import (
	"context"
	"fmt"
)

// RequestInterceptor mutates a request after base URL resolution and before
// query parameters and the JSON body are applied. Implementations are shared
// across concurrent Execute calls and must be safe for concurrent use.
type RequestInterceptor interface {
	InterceptRequest(ctx context.Context, req *Request) error
}

// ResponseInterceptor observes or mutates a response after a successful transport call.
type ResponseInterceptor interface {
	InterceptResponse(ctx context.Context, resp *Response) error
}

// RequestInterceptorFunc adapts a function to RequestInterceptor.
type RequestInterceptorFunc func(ctx context.Context, req *Request) error

// InterceptRequest calls f(ctx, req).
func (f RequestInterceptorFunc) InterceptRequest(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// ResponseInterceptorFunc adapts a function to ResponseInterceptor.
type ResponseInterceptorFunc func(ctx context.Context, resp *Response) error

// InterceptResponse calls f(ctx, resp).
func (f ResponseInterceptorFunc) InterceptResponse(ctx context.Context, resp *Response) error {
	return f(ctx, resp)
}

// runRequestInterceptors executes request interceptors in registration order; the first failure stops the chain.
func (c *client) runRequestInterceptors(ctx context.Context, req *Request) error {
	for i, interceptor := range c.requestInterceptors {
		if err := interceptor.InterceptRequest(ctx, req); err != nil {
			return NewInterceptorError(fmt.Sprintf("request interceptor %d failed", i), stageRequest, err)
		}
		// WithHeader records invalid fields instead of returning them.
		if req.err != nil {
			return NewInterceptorError(fmt.Sprintf("request interceptor %d set an invalid header", i), stageRequest, req.err)
		}
	}
	return nil
}

// runResponseInterceptors executes response interceptors in registration order; the first failure stops the chain.
func (c *client) runResponseInterceptors(ctx context.Context, resp *Response) error {
	for i, interceptor := range c.responseInterceptors {
		if err := interceptor.InterceptResponse(ctx, resp); err != nil {
			return NewInterceptorError(fmt.Sprintf("response interceptor %d failed", i), stageResponse, err)
		}
	}
	return nil
}

const (
	stageRequest  = "request"
	stageResponse = "response"
)
