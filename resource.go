package broute

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// GetAller lists a resource, answered with 200 and the JSON encoded result.
type GetAller interface {
	GetAll(ctx context.Context, req *Request) (any, error)
}

// Getter reads one item, answered with 200. A nil item is reported as 404.
type Getter interface {
	Get(ctx context.Context, id string, req *Request) (any, error)
}

// Creator creates an item from the JSON body, answered with 201 and the created item.
type Creator interface {
	Create(ctx context.Context, body json.RawMessage, req *Request) (any, error)
}

// Updater replaces one item, answered with 204.
type Updater interface {
	Update(ctx context.Context, id string, body json.RawMessage, req *Request) error
}

// AllUpdater replaces the whole collection, answered with 204.
type AllUpdater interface {
	UpdateAll(ctx context.Context, body json.RawMessage, req *Request) error
}

// Deleter removes one item, answered with 204.
type Deleter interface {
	Delete(ctx context.Context, id string, req *Request) error
}

// AllDeleter removes the whole collection, answered with 204.
type AllDeleter interface {
	DeleteAll(ctx context.Context, req *Request) error
}

// ResourceOption configures [Endpoint.Resource].
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	idParam string
	auth    func(context.Context, *Request) (any, error)
}

// WithIDParam names the item placeholder, "id" by default. Nested resources need distinct names
// ("postId", "replyId") because the enclosing placeholders are part of their path.
func WithIDParam(name string) ResourceOption {
	return func(o *resourceOptions) { o.idParam = name }
}

// WithResourceAuthentication authenticates every operation of the resource, the result is on
// [Request.Authentication].
func WithResourceAuthentication(fn func(context.Context, *Request) (any, error)) ResourceOption {
	return func(o *resourceOptions) { o.auth = fn }
}

// Resource mounts a REST controller at name below e and returns its endpoint. Only the
// operations ctrl implements are registered, requests for the others end up as not found:
//
//	GET    /name       GetAll     200
//	GET    /name/{id}  Get        200
//	POST   /name       Create     201
//	PUT    /name       UpdateAll  204
//	PUT    /name/{id}  Update     204
//	DELETE /name       DeleteAll  204
//	DELETE /name/{id}  Delete     204
func (e *Endpoint) Resource(name string, ctrl any, opts ...ResourceOption) *Endpoint {
	o := resourceOptions{idParam: "id"}
	for _, opt := range opts {
		opt(&o)
	}

	res := e.Route(name)
	if o.auth != nil {
		res.AddAuthenticationMiddleware(o.auth)
	}

	item := "{" + o.idParam + "}"
	id := func(req *Request) string { return req.URL.Param(o.idParam) }

	if c, ok := ctrl.(GetAller); ok {
		res.Get("", func(ctx context.Context, req *Request) (*Response, error) {
			v, err := c.GetAll(ctx, req)
			if err != nil {
				return nil, err
			}

			return NewResponseBuilder().SetJSONBody(v).Build()
		})
	}

	if c, ok := ctrl.(Getter); ok {
		res.Get(item, func(ctx context.Context, req *Request) (*Response, error) {
			v, err := c.Get(ctx, id(req), req)
			if err != nil {
				return nil, err
			}

			if v == nil {
				return nil, NewError(CodeNotFound, errors.Newf("%s %q does not exist", name, id(req)))
			}

			return NewResponseBuilder().SetJSONBody(v).Build()
		})
	}

	if c, ok := ctrl.(Creator); ok {
		res.Post("", func(ctx context.Context, req *Request) (*Response, error) {
			body, err := jsonBody(ctx, req)
			if err != nil {
				return nil, err
			}

			v, err := c.Create(ctx, body, req)
			if err != nil {
				return nil, err
			}

			return NewResponseBuilder().SetStatusCode(http.StatusCreated).SetJSONBody(v).Build()
		})
	}

	if c, ok := ctrl.(AllUpdater); ok {
		res.Put("", func(ctx context.Context, req *Request) (*Response, error) {
			body, err := jsonBody(ctx, req)
			if err != nil {
				return nil, err
			}

			return noContent(c.UpdateAll(ctx, body, req))
		})
	}

	if c, ok := ctrl.(Updater); ok {
		res.Put(item, func(ctx context.Context, req *Request) (*Response, error) {
			body, err := jsonBody(ctx, req)
			if err != nil {
				return nil, err
			}

			return noContent(c.Update(ctx, id(req), body, req))
		})
	}

	if c, ok := ctrl.(AllDeleter); ok {
		res.Delete("", func(ctx context.Context, req *Request) (*Response, error) {
			return noContent(c.DeleteAll(ctx, req))
		})
	}

	if c, ok := ctrl.(Deleter); ok {
		res.Delete(item, func(ctx context.Context, req *Request) (*Response, error) {
			return noContent(c.Delete(ctx, id(req), req))
		})
	}

	return res
}

// APIVersion returns the endpoint for version n of an API, mounted at api/v{n}. Versions start
// at 1, smaller values mount version 1.
func (e *Endpoint) APIVersion(n int) *Endpoint {
	return e.Route(fmt.Sprintf("api/v%d", max(n, 1)))
}

// jsonBody reads the request body for a resource operation. An empty body is a nil message.
func jsonBody(ctx context.Context, req *Request) (json.RawMessage, error) {
	body, err := req.Body(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	if body == nil {
		return nil, nil
	}

	if !json.Valid([]byte(*body)) {
		return nil, NewError(CodeBadRequest, errors.New("request body is not valid JSON"))
	}

	return json.RawMessage(*body), nil
}

func noContent(err error) (*Response, error) {
	if err != nil {
		return nil, err
	}

	return NewResponseBuilder().Build()
}
