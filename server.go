package broute

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Page names looked up through the [PageSource].
const (
	PageNotFound            = "404.html"
	PageInternalServerError = "500.html"
)

// PageSource provides custom error pages by name.
type PageSource interface {
	Page(ctx context.Context, name string) (string, error)
}

// PageSourceFunc allow casting a function to imple [PageSource].
type PageSourceFunc func(ctx context.Context, name string) (string, error)

// Page implements the [PageSource] interface.
func (f PageSourceFunc) Page(ctx context.Context, name string) (string, error) { return f(ctx, name) }

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithRoot sets the routing tree, by default the server has an empty root.
func WithRoot(root *Endpoint) ServerOption {
	return func(s *Server) { s.root = root }
}

// WithDevelopmentMessages makes error responses show the full error with stack trace.
func WithDevelopmentMessages(v bool) ServerOption {
	return func(s *Server) { s.dev = v }
}

// WithLogger sets the logger, by default the standard library logger is used.
func WithLogger(l Logger) ServerOption {
	return func(s *Server) { s.logs = l }
}

// WithPageCache sets the cache for error pages.
func WithPageCache(c *PageCache) ServerOption {
	return func(s *Server) { s.pages = c }
}

// WithPageSource sets where custom error pages come from.
func WithPageSource(src PageSource) ServerOption {
	return func(s *Server) { s.source = src }
}

// Server adapts a routing tree to a transport. It is the only place where errors and panics from
// middleware and handlers are turned into responses.
type Server struct {
	root   *Endpoint
	dev    bool
	logs   Logger
	pages  *PageCache
	source PageSource
}

// NewServer inits the server.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{logs: NewStdLogger(log.Default())}
	for _, opt := range opts {
		opt(s)
	}

	if s.root == nil {
		s.root = NewRoot()
	}

	if s.pages == nil {
		s.pages = NewPageCache()
	}

	return s
}

// Root returns the routing tree.
func (s *Server) Root() *Endpoint { return s.root }

// Dispatch runs the request through the tree and always returns a response.
func (s *Server) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if v := recover(); v != nil {
			err, ok := v.(error)
			if !ok {
				err = errors.Newf("%v", v)
			}

			resp = s.errorResponse(ctx, errors.Wrap(err, "recovered panic"))
		}
	}()

	resp, err := s.root.OnRequest(ctx, DispatchKey(req.URL.RequestURI()), req)
	switch {
	case err != nil:
		return s.errorResponse(ctx, err)
	case resp == nil:
		return s.notFoundResponse(ctx)
	default:
		return s.resolveStatus(ctx, resp)
	}
}

// resolveStatus settles the status of responses that did not come from the builder. An auto code
// follows the body, a code no transport can write becomes a 500.
func (s *Server) resolveStatus(ctx context.Context, resp *Response) *Response {
	switch {
	case resp.Code == StatusAuto && resp.Body == nil:
		resp.Code = http.StatusNoContent
	case resp.Code == StatusAuto:
		resp.Code = http.StatusOK
	case resp.Code < 100 || resp.Code > 599:
		return s.errorResponse(ctx, errors.Newf("invalid response status code %d", resp.Code))
	}

	return resp
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var resp *Response
	if req, err := RequestFromHTTP(r); err != nil {
		resp = s.errorResponse(ctx, err)
	} else {
		resp = s.Dispatch(ctx, req)
	}

	s.write(w, resp)
}

func (s *Server) write(w http.ResponseWriter, resp *Response) {
	for _, key := range resp.Headers.Keys() {
		w.Header()[key] = resp.Headers.Values(key)
	}

	w.WriteHeader(resp.Code)
	if resp.Body == nil {
		return
	}

	if _, err := w.Write([]byte(*resp.Body)); err != nil {
		s.logs.LogResponseWriteError(errors.Wrap(err, "write body"))
	}
}

func (s *Server) notFoundResponse(ctx context.Context) *Response {
	return s.pageResponse(ctx, http.StatusNotFound, PageNotFound)
}

func (s *Server) errorResponse(ctx context.Context, err error) *Response {
	code := int(CodeOf(err))
	if code < 400 || code > 599 {
		code = http.StatusInternalServerError
	}

	if code >= 500 {
		s.logs.LogUnhandledServeError(err)
	}

	switch {
	case s.dev:
		return plainTextResponse(code, fmt.Sprintf("%+v", err))
	case code == http.StatusInternalServerError:
		return s.pageResponse(ctx, code, PageInternalServerError)
	case code < 500:
		return plainTextResponse(code, http.StatusText(code))
	default:
		return htmlResponse(code, builtinPage(code))
	}
}

func (s *Server) pageResponse(ctx context.Context, code int, name string) *Response {
	if s.source == nil {
		return htmlResponse(code, builtinPage(code))
	}

	page, err := s.pages.Get(ctx, name, func(ctx context.Context) (string, error) {
		return s.source.Page(ctx, name)
	})
	if err != nil {
		s.logs.LogUnhandledServeError(errors.Wrapf(err, "load page %q", name))
		return htmlResponse(code, builtinPage(code))
	}

	return htmlResponse(code, page)
}

func builtinPage(code int) string {
	title := html.EscapeString(fmt.Sprintf("%d %s", code, http.StatusText(code)))
	return "<!DOCTYPE html><html><head><title>" + title + "</title></head><body><h1>" + title + "</h1></body></html>"
}

func htmlResponse(code int, body string) *Response {
	return lo.Must(NewResponseBuilder().SetStatusCode(code).SetHTMLBody(body).Build())
}

func plainTextResponse(code int, body string) *Response {
	return lo.Must(NewResponseBuilder().
		SetStatusCode(code).
		SetPlainTextBody(body).
		SetHeader("X-Content-Type-Options", "nosniff").
		Build())
}

// MarshalJSON describes the server and its tree for diagnostics.
func (s *Server) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DevelopmentMessages bool      `json:"developmentMessages"`
		Root                *Endpoint `json:"root"`
	}{s.dev, s.root})
}
