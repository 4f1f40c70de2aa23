package broute

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/samber/lo"
)

// node is either a handler or a nested endpoint.
type node interface {
	OnRequest(ctx context.Context, url string, req *Request) (*Response, error)
	String() string
}

// EndpointOption configures an [Endpoint].
type EndpointOption func(*Endpoint)

// WithEndpointParamMatcher sets the placeholder syntax of the endpoint path. Handlers registered
// on the endpoint inherit it.
func WithEndpointParamMatcher(m ParamMatcher) EndpointOption {
	return func(e *Endpoint) { e.matcher = m }
}

// Endpoint is a node in the routing tree. It owns request middleware, response middleware and an
// ordered list of children: handlers and sub-endpoints. The tree must not be modified while it
// serves requests.
type Endpoint struct {
	path     string
	parent   *Endpoint
	matcher  ParamMatcher
	reverser *Reverser
	prefix   prefixPattern

	requestMiddleware  []RequestMiddleware
	responseMiddleware []ResponseMiddleware
	handlers           []*RequestHandler
	endpoints          []*Endpoint
	children           []node
}

// NewRoot inits the root of a routing tree. The root matches every url.
func NewRoot(opts ...EndpointOption) *Endpoint {
	return newEndpoint(nil, "", opts...)
}

func newEndpoint(parent *Endpoint, path string, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{path: NormalizePath(path), parent: parent, matcher: DefaultParams}
	if parent != nil {
		e.matcher = parent.matcher
	} else {
		e.reverser = NewReverser()
	}

	for _, opt := range opts {
		opt(e)
	}

	e.prefix = compilePrefix(e.FullPath(), e.matcher)

	return e
}

// CreateEndpointAtPath adds a child endpoint at the path relative to e.
func (e *Endpoint) CreateEndpointAtPath(path string, opts ...EndpointOption) *Endpoint {
	child := newEndpoint(e, path, opts...)
	e.endpoints = append(e.endpoints, child)
	e.children = append(e.children, child)

	return child
}

// Route is shorthand for [Endpoint.CreateEndpointAtPath].
func (e *Endpoint) Route(path string, opts ...EndpointOption) *Endpoint {
	return e.CreateEndpointAtPath(path, opts...)
}

// Handle registers a handler for method and the pattern relative to e.
func (e *Endpoint) Handle(method, pattern string, h Handler, opts ...HandlerOption) *RequestHandler {
	rh := newRequestHandler(e, method, pattern, h, opts...)
	e.handlers = append(e.handlers, rh)
	e.children = append(e.children, rh)

	if rh.name != "" {
		e.Root().reverser.Named(rh.name, "/"+rh.FullPath(), rh.matcher)
	}

	return rh
}

// Get registers a GET handler.
func (e *Endpoint) Get(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodGet, pattern, h, opts...)
	return e
}

// Post registers a POST handler.
func (e *Endpoint) Post(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodPost, pattern, h, opts...)
	return e
}

// Put registers a PUT handler.
func (e *Endpoint) Put(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodPut, pattern, h, opts...)
	return e
}

// Patch registers a PATCH handler.
func (e *Endpoint) Patch(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodPatch, pattern, h, opts...)
	return e
}

// Delete registers a DELETE handler.
func (e *Endpoint) Delete(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodDelete, pattern, h, opts...)
	return e
}

// Options registers an OPTIONS handler.
func (e *Endpoint) Options(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(http.MethodOptions, pattern, h, opts...)
	return e
}

// All registers a handler for any method.
func (e *Endpoint) All(pattern string, h HandlerFunc, opts ...HandlerOption) *Endpoint {
	e.Handle(MethodAll, pattern, h, opts...)
	return e
}

// AddRequestMiddleware appends request middleware.
func (e *Endpoint) AddRequestMiddleware(mw ...RequestMiddleware) *Endpoint {
	e.requestMiddleware = append(e.requestMiddleware, mw...)
	return e
}

// AddResponseMiddleware appends response middleware.
func (e *Endpoint) AddResponseMiddleware(mw ...ResponseMiddleware) *Endpoint {
	e.responseMiddleware = append(e.responseMiddleware, mw...)
	return e
}

// AddAuthenticationMiddleware appends request middleware that stores the result of fn as the
// request's authentication.
func (e *Endpoint) AddAuthenticationMiddleware(fn func(context.Context, *Request) (any, error)) *Endpoint {
	return e.AddRequestMiddleware(AuthenticationMiddleware(fn))
}

// Path returns the path relative to the parent.
func (e *Endpoint) Path() string { return e.path }

// FullPath returns the path from the root, without leading slash.
func (e *Endpoint) FullPath() string {
	if e.parent == nil {
		return e.path
	}

	return NormalizePath(e.parent.FullPath() + "/" + e.path)
}

// Parent returns the parent endpoint, nil for the root.
func (e *Endpoint) Parent() *Endpoint { return e.parent }

// Root walks up to the root of the tree.
func (e *Endpoint) Root() *Endpoint {
	root := e
	for root.parent != nil {
		root = root.parent
	}

	return root
}

// Handlers returns the handlers registered directly on e.
func (e *Endpoint) Handlers() []*RequestHandler { return e.handlers }

// Children returns the direct sub-endpoints of e.
func (e *Endpoint) Children() []*Endpoint { return e.endpoints }

// Reverse builds the url of a handler registered with [WithName] anywhere in the tree.
func (e *Endpoint) Reverse(name string, vals ...string) (string, error) {
	return e.Root().reverser.Reverse(name, vals...)
}

// Reverser returns the tree's reverser.
func (e *Endpoint) Reverser() *Reverser { return e.Root().reverser }

func (e *Endpoint) String() string { return "/" + e.FullPath() }

// OnRequest dispatches the request through the subtree rooted at e. The children are tried in
// registration order and more than one of them producing a response is a [*ConflictError]. A nil
// response without error means nothing in the subtree matched.
func (e *Endpoint) OnRequest(ctx context.Context, url string, req *Request) (*Response, error) {
	if !e.prefix.match(url) {
		return nil, nil
	}

	for _, mw := range e.requestMiddleware {
		if err := mw(ctx, req); err != nil {
			return nil, err
		}
	}

	var resp *Response
	var from node
	for _, child := range e.children {
		res, err := child.OnRequest(ctx, url, req)
		if err != nil {
			return nil, err
		}

		if res == nil {
			continue
		}

		if resp != nil {
			return nil, &ConflictError{URL: url, First: from.String(), Second: child.String()}
		}

		resp, from = res, child
	}

	for _, mw := range e.responseMiddleware {
		res, err := mw(ctx, req, resp)
		if err != nil {
			return nil, err
		}

		if res != nil {
			resp = res
		}
	}

	return resp, nil
}

type endpointSnapshot struct {
	Path               string             `json:"path"`
	RequestMiddleware  int                `json:"requestMiddleware"`
	ResponseMiddleware int                `json:"responseMiddleware"`
	Handlers           []string           `json:"handlers"`
	Children           []endpointSnapshot `json:"children"`
}

func (e *Endpoint) snapshot() endpointSnapshot {
	return endpointSnapshot{
		Path:               "/" + e.FullPath(),
		RequestMiddleware:  len(e.requestMiddleware),
		ResponseMiddleware: len(e.responseMiddleware),
		Handlers:           lo.Map(e.handlers, func(h *RequestHandler, _ int) string { return h.String() }),
		Children:           lo.Map(e.endpoints, func(c *Endpoint, _ int) endpointSnapshot { return c.snapshot() }),
	}
}

// MarshalJSON describes the tree for diagnostics.
func (e *Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.snapshot())
}
