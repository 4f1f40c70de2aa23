package broute

import (
	"context"
	"maps"
	"strings"
)

// MethodAll registers a handler for every request method.
const MethodAll = "*"

// Handler produces the response for a request. Returning a nil response means the handler has
// nothing to say about the request, which is different from an error.
type Handler interface {
	ServeRequest(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc allow casting a function to imple [Handler].
type HandlerFunc func(context.Context, *Request) (*Response, error)

// ServeRequest implements the [Handler] interface.
func (f HandlerFunc) ServeRequest(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// RequestMiddleware runs before the children of an endpoint. It may mutate the request, returning
// an error aborts the dispatch.
type RequestMiddleware func(ctx context.Context, req *Request) error

// ResponseMiddleware runs after the children of an endpoint. The resp argument is nil when nothing
// matched. Returning a nil response keeps resp.
type ResponseMiddleware func(ctx context.Context, req *Request, resp *Response) (*Response, error)

// HandlerOption configures a [RequestHandler].
type HandlerOption func(*RequestHandler)

// WithParamMatcher sets the placeholder syntax of the handler pattern.
func WithParamMatcher(m ParamMatcher) HandlerOption {
	return func(h *RequestHandler) { h.matcher = m }
}

// WithName names the handler so its url can be built with [Endpoint.Reverse].
func WithName(name string) HandlerOption {
	return func(h *RequestHandler) { h.name = name }
}

// RequestHandler binds a [Handler] to a method and a path relative to its endpoint.
type RequestHandler struct {
	method  string
	path    string
	handler Handler
	parent  *Endpoint
	matcher ParamMatcher
	name    string

	pattern    *Pattern
	compileErr error
}

func newRequestHandler(parent *Endpoint, method, path string, h Handler, opts ...HandlerOption) *RequestHandler {
	rh := &RequestHandler{
		method:  strings.ToUpper(method),
		path:    NormalizePath(path),
		handler: h,
		parent:  parent,
		matcher: parent.matcher,
	}

	for _, opt := range opts {
		opt(rh)
	}

	rh.pattern, rh.compileErr = CompilePattern(rh.FullPath(), rh.matcher)

	return rh
}

// Method returns the method the handler is registered for.
func (h *RequestHandler) Method() string { return h.method }

// Path returns the path relative to the parent endpoint.
func (h *RequestHandler) Path() string { return h.path }

// Name returns the route name, or "".
func (h *RequestHandler) Name() string { return h.name }

// Err returns the error from compiling the pattern. A handler with a malformed pattern never
// matches.
func (h *RequestHandler) Err() error { return h.compileErr }

// FullPath returns the path from the root, without leading slash.
func (h *RequestHandler) FullPath() string {
	if h.parent == nil {
		return h.path
	}

	return NormalizePath(h.parent.FullPath() + "/" + h.path)
}

// IsMatch reports whether the dispatch key matches the full path.
func (h *RequestHandler) IsMatch(url string) bool {
	return h.compileErr == nil && h.pattern.Match(url)
}

// Params returns the parameters of the dispatch key, empty when it does not match.
func (h *RequestHandler) Params(url string) map[string]string {
	if h.compileErr != nil {
		return map[string]string{}
	}

	return h.pattern.Params(url)
}

// OnRequest invokes the handler when both method and path match and returns (nil, nil) otherwise.
// The params are visible on req.URL.Params only while the handler runs.
func (h *RequestHandler) OnRequest(ctx context.Context, url string, req *Request) (*Response, error) {
	if h.method != MethodAll && h.method != req.Method {
		return nil, nil
	}

	if !h.IsMatch(url) {
		return nil, nil
	}

	if req.URL.Params == nil {
		req.URL.Params = map[string]string{}
	}

	maps.Copy(req.URL.Params, h.Params(url))
	defer clear(req.URL.Params)

	return h.handler.ServeRequest(ctx, req)
}

func (h *RequestHandler) String() string { return h.method + ": /" + h.FullPath() }
