// Package broute provides an embeddable router built as a tree of endpoints with request and
// response middleware.
//
// # Overview
//
// A routing tree starts at [NewRoot]. Every [Endpoint] owns a path relative to its parent, a
// list of request middleware, a list of response middleware and an ordered list of children:
// handlers and sub-endpoints. Handlers return a [*Response] (or nil when they have nothing to say)
// and an error, they never write to a connection.
//
// A minimal example:
//
//	root := broute.NewRoot()
//	root.Route("books").Get("{id}/info.json", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
//	    return broute.NewResponseBuilder().
//	        SetJSONBody(map[string]string{"id": req.URL.Param("id")}).
//	        Build()
//	}, broute.WithName("get-book"))
//
//	srv := broute.NewServer(broute.WithRoot(root))
//	http.ListenAndServe(":8080", srv)
//
// # Dispatch
//
// For every request the server computes a dispatch key: the request path with duplicate,
// leading and trailing slashes removed, followed by the untouched query string. Each endpoint then:
//
//  1. skips itself when its full path is not a prefix of the key
//  2. runs its request middleware in registration order
//  3. offers the request to every child in registration order
//  4. runs its response middleware in registration order
//
// Two children producing a response for the same request is a configuration bug reported as a
// [*ConflictError] which matches [ErrRoutingConflict]. There is no priority between routes.
//
// Response middleware runs even when nothing matched, in which case it receives a nil response.
// [NotFoundMiddleware] uses that to serve a custom page for a subtree.
//
// # Parameters
//
// Handler paths may contain placeholders. The syntax is pluggable through [ParamMatcher]:
// [BracesParams] ("/books/{id}", the default), [ColonParams] ("/books/:id") and [NoParams]. The
// values are only visible on [URL.Params] while the matching handler runs.
//
// # Error Handling
//
// Errors travel up the tree untouched. Only the [Server] turns them into responses:
//
//   - [*Error] (created with [NewError]): uses the error's code, the body is the status text
//   - Other errors and panics: logged and converted to 500 Internal Server Error
//
// With [WithDevelopmentMessages] the body contains the full error including its stack trace.
// Custom 404 and 500 pages can be provided by a [PageSource], they are cached in a [PageCache].
//
// # Named Routes and URL Reversing
//
// Handlers registered with [WithName] can be turned back into urls:
//
//	url, err := root.Reverse("get-book", "1234") // returns "/books/1234/info.json"
//
// # Resources
//
// [Endpoint.Resource] mounts a REST controller. The controller implements any of [GetAller],
// [Getter], [Creator], [Updater], [AllUpdater], [Deleter] and [AllDeleter]:
//
//	root.APIVersion(1).Resource("books", store) // GET /api/v1/books, GET /api/v1/books/{id}, ...
//
// # Runtime
//
// The brserve sub-package wires a tree into a fully configured http server with logging,
// tracing, TLS and AWS clients using go.uber.org/fx.
package broute
