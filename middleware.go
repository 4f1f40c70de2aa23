package broute

import (
	"context"
)

// AuthenticationMiddleware stores the result of fn on [Request.Authentication]. An error from fn
// aborts the dispatch, return an [*Error] with [CodeUnauthorized] to have it reported as 401.
func AuthenticationMiddleware(fn func(context.Context, *Request) (any, error)) RequestMiddleware {
	return func(ctx context.Context, req *Request) error {
		auth, err := fn(ctx, req)
		if err != nil {
			return err
		}

		req.Authentication = auth

		return nil
	}
}

// CORSMiddleware adds the Access-Control-Allow-* headers to every response of the endpoint.
func CORSMiddleware(opts ...CORSOption) ResponseMiddleware {
	cors := newCORSOptions(opts...)

	return func(_ context.Context, _ *Request, resp *Response) (*Response, error) {
		if resp == nil {
			return nil, nil
		}

		resp = resp.Clone()
		cors.apply(&resp.Headers)

		return resp, nil
	}
}

// NotFoundMiddleware responds with h when nothing in the endpoint's subtree matched.
func NotFoundMiddleware(h Handler) ResponseMiddleware {
	return func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
		if resp != nil {
			return nil, nil
		}

		return h.ServeRequest(ctx, req)
	}
}
