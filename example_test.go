package broute_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
)

func Example() {
	root := broute.NewRoot()
	root.Route("items").Get("{id}", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetJSONBody(map[string]string{
			"id":   req.URL.Param("id"),
			"name": "Example Item",
		}).Build()
	}, broute.WithName("get-item"))

	// Generate URL by route name
	url, _ := root.Reverse("get-item", "123")
	fmt.Println("URL:", url)

	// Test the handler
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	broute.NewServer(broute.WithRoot(root)).ServeHTTP(rec, req)

	fmt.Println("Status:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// URL: /items/123
	// Status: 200
	// Body: {"id":"42","name":"Example Item"}
}

func ExampleNewError() {
	root := broute.NewRoot()
	root.Get("protected", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		token := req.Header("Authorization")
		if token == "" {
			return nil, broute.NewError(broute.CodeUnauthorized, errors.New("missing token"))
		}
		if token != "Bearer secret" {
			return nil, broute.NewError(broute.CodeForbidden, errors.New("invalid token"))
		}
		return broute.NewResponseBuilder().SetPlainTextBody("welcome").Build()
	})

	srv := broute.NewServer(broute.WithRoot(root))

	// Request without token
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	srv.ServeHTTP(rec, req)
	fmt.Println("No token:", rec.Code)

	// Request with invalid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	fmt.Println("Bad token:", rec.Code)

	// Request with valid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret")
	srv.ServeHTTP(rec, req)
	fmt.Println("Valid token:", rec.Code)
	// Output:
	// No token: 401
	// Bad token: 403
	// Valid token: 200
}

func ExampleEndpoint_AddResponseMiddleware() {
	root := broute.NewRoot()
	root.Get("ping", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetPlainTextBody("pong").Build()
	})

	// Response middleware sees the response of the matching handler
	root.AddResponseMiddleware(func(ctx context.Context, req *broute.Request, resp *broute.Response) (*broute.Response, error) {
		if resp == nil {
			return nil, nil
		}

		resp = resp.Clone()
		resp.Headers.Set("X-Request-ID", "req-123")
		return resp, nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	broute.NewServer(broute.WithRoot(root)).ServeHTTP(rec, req)

	fmt.Println("Body:", rec.Body.String())
	fmt.Println("Request ID:", rec.Header().Get("X-Request-ID"))
	// Output:
	// Body: pong
	// Request ID: req-123
}

func ExampleEndpoint_AddRequestMiddleware() {
	root := broute.NewRoot()
	root.AddRequestMiddleware(func(ctx context.Context, req *broute.Request) error {
		req.CustomSettings["user"] = strings.ToUpper(req.URL.QueryValue("user"))
		return nil
	})

	root.Get("hello", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetPlainTextBody(fmt.Sprintf("hello %s", req.CustomSettings["user"])).Build()
	})

	resp := broute.NewServer(broute.WithRoot(root)).Dispatch(context.Background(), mustRequest("/hello?user=ann"))
	fmt.Println(resp.Code, resp.BodyString())
	// Output:
	// 200 hello ANN
}

func ExampleEndpoint_Reverse() {
	root := broute.NewRoot()
	users := root.Route("users")
	users.Get("{id}", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		return nil, nil
	}, broute.WithName("get-user"))

	users.Get("{userId}/posts/{postId}", func(ctx context.Context, req *broute.Request) (*broute.Response, error) {
		return nil, nil
	}, broute.WithName("get-user-post"))

	url1, _ := root.Reverse("get-user", "42")
	url2, _ := root.Reverse("get-user-post", "42", "101")

	fmt.Println(url1)
	fmt.Println(url2)
	// Output:
	// /users/42
	// /users/42/posts/101
}

func ExampleCodeOf() {
	// Create an error with a specific code
	err := broute.NewError(broute.CodeNotFound, errors.New("user not found"))
	fmt.Println("Code:", broute.CodeOf(err))

	// Wrapped errors preserve the code
	wrapped := fmt.Errorf("handler failed: %w", err)
	fmt.Println("Wrapped code:", broute.CodeOf(wrapped))

	// Other errors return CodeUnknown
	plainErr := errors.New("something went wrong")
	fmt.Println("Plain error code:", broute.CodeOf(plainErr))
	// Output:
	// Code: 404
	// Wrapped code: 404
	// Plain error code: 0
}

func mustRequest(url string) *broute.Request {
	req, err := broute.NewRequest(http.MethodGet, url, nil, nil)
	if err != nil {
		panic(err)
	}

	return req
}

type tagsController struct{ tags []string }

func (c *tagsController) GetAll(context.Context, *broute.Request) (any, error) {
	return c.tags, nil
}

func (c *tagsController) DeleteAll(context.Context, *broute.Request) error {
	c.tags = nil
	return nil
}

func ExampleEndpoint_Resource() {
	root := broute.NewRoot()
	root.APIVersion(1).Resource("tags", &tagsController{tags: []string{"go", "http"}})

	srv := broute.NewServer(broute.WithRoot(root))
	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPost} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/tags", nil))
		fmt.Println(strings.TrimSpace(fmt.Sprintf("%s %d %s", method, rec.Code, rec.Body.String())))
	}
	// Output:
	// GET 200 ["go","http"]
	// DELETE 204
	// POST 404 <!DOCTYPE html><html><head><title>404 Not Found</title></head><body><h1>404 Not Found</h1></body></html>
}
