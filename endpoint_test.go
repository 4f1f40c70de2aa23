package broute_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatch(t *testing.T, e *broute.Endpoint, method, url string) (*broute.Response, error) {
	t.Helper()

	req := newRequest(t, method, url)
	return e.OnRequest(t.Context(), broute.DispatchKey(req.URL.RequestURI()), req)
}

func TestEndpointFullPath(t *testing.T) {
	root := broute.NewRoot()
	sub := root.CreateEndpointAtPath("/resource/").CreateEndpointAtPath("/subresource/")
	assert.Equal(t, "resource/subresource", sub.FullPath())
	assert.Equal(t, "subresource", sub.Path())
	assert.Equal(t, "resource", sub.Parent().FullPath())
	assert.Same(t, root, sub.Root())
	assert.Nil(t, root.Parent())

	deep := root.Route("//a//b/").Route("c///")
	assert.Equal(t, "a/b/c", deep.FullPath())

	rh := deep.Handle(http.MethodGet, "//d//", textHandler("x"))
	assert.Equal(t, "a/b/c/d", rh.FullPath())
	assert.Equal(t, "", root.FullPath())
}

func TestEndpointDispatch(t *testing.T) {
	root := broute.NewRoot()
	books := root.Route("books")
	books.
		Get("", textHandler("list")).
		Post("", textHandler("create")).
		Get("{id}", textHandler("show")).
		Put("{id}", textHandler("replace")).
		Patch("{id}", textHandler("update")).
		Delete("{id}", textHandler("delete")).
		Options("{id}", textHandler("options"))
	root.Route("authors").All("{id}", textHandler("author"))

	for _, tt := range []struct {
		method, url, exp string
	}{
		{http.MethodGet, "/books", "list"},
		{http.MethodGet, "/books/", "list"},
		{http.MethodPost, "/books", "create"},
		{http.MethodGet, "/books/1", "show"},
		{http.MethodPut, "/books/1", "replace"},
		{http.MethodPatch, "/books/1", "update"},
		{http.MethodDelete, "/books/1", "delete"},
		{http.MethodOptions, "/books/1", "options"},
		{http.MethodHead, "/authors/1", "author"},
		{http.MethodGet, "//books//1?x=1", "show"},
	} {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			resp, err := dispatch(t, root, tt.method, tt.url)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.exp, resp.BodyString())
		})
	}

	resp, err := dispatch(t, root, http.MethodGet, "/nothing")
	require.NoError(t, err)
	assert.Nil(t, resp)

	assert.Len(t, books.Handlers(), 7)
	assert.Len(t, root.Children(), 2)
}

func TestEndpointTrailingParamWithQuery(t *testing.T) {
	var id, lang string
	root := broute.NewRoot()
	root.Route("books").Get("{id}", broute.HandlerFunc(
		func(_ context.Context, req *broute.Request) (*broute.Response, error) {
			id, lang = req.URL.Param("id"), req.URL.QueryValue("lang")
			return broute.NewResponseBuilder().Build()
		}))

	resp, err := dispatch(t, root, http.MethodGet, "/books/1234?lang=nl#top")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "1234", id)
	assert.Equal(t, "nl", lang)
}

func TestEndpointPrefixPrune(t *testing.T) {
	var ran bool
	root := broute.NewRoot()
	root.Route("admin").AddRequestMiddleware(func(context.Context, *broute.Request) error {
		ran = true
		return nil
	})

	_, err := dispatch(t, root, http.MethodGet, "/books")
	require.NoError(t, err)
	assert.False(t, ran)

	_, err = dispatch(t, root, http.MethodGet, "/admin/users")
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestEndpointParamPrefix(t *testing.T) {
	root := broute.NewRoot()
	root.Route("users/{user}").Get("posts/{post}", func(_ context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetPlainTextBody(req.URL.Param("user") + ":" + req.URL.Param("post")).Build()
	})

	resp, err := dispatch(t, root, http.MethodGet, "/users/ann/posts/9")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "ann:9", resp.BodyString())
}

func TestEndpointParamNameCollision(t *testing.T) {
	root := broute.NewRoot()
	root.Route("{id}").Get("{id}", func(_ context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetPlainTextBody(req.URL.Param("id")).Build()
	})

	resp, err := dispatch(t, root, http.MethodGet, "/parent/child")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "child", resp.BodyString())
}

func TestEndpointMiddlewareOrder(t *testing.T) {
	set := func(_ context.Context, req *broute.Request) error {
		req.CustomSettings["x"] = 1
		return nil
	}

	newTree := func(observed *any, mws ...broute.RequestMiddleware) *broute.Endpoint {
		read := func(_ context.Context, req *broute.Request) error {
			*observed = req.CustomSettings["x"]
			return nil
		}

		root := broute.NewRoot()
		for _, mw := range mws {
			if mw == nil {
				mw = read
			}

			root.AddRequestMiddleware(mw)
		}

		return root
	}

	var observed any
	_, err := dispatch(t, newTree(&observed, set, nil), http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, 1, observed)

	observed = "unset"
	_, err = dispatch(t, newTree(&observed, nil, set), http.MethodGet, "/")
	require.NoError(t, err)
	assert.Nil(t, observed)
}

func TestEndpointRequestMiddlewareError(t *testing.T) {
	var called bool
	root := broute.NewRoot()
	root.AddRequestMiddleware(func(context.Context, *broute.Request) error {
		return broute.NewError(broute.CodeForbidden, errors.New("nope"))
	})
	root.Get("", func(context.Context, *broute.Request) (*broute.Response, error) {
		called = true
		return nil, nil
	})

	_, err := dispatch(t, root, http.MethodGet, "/")
	require.Error(t, err)
	assert.Equal(t, broute.CodeForbidden, broute.CodeOf(err))
	assert.False(t, called)
}

func TestEndpointResponseMiddlewareKeepsResponse(t *testing.T) {
	var order []string
	root := broute.NewRoot()
	root.Get("", textHandler("original"))
	root.AddResponseMiddleware(
		func(_ context.Context, _ *broute.Request, resp *broute.Response) (*broute.Response, error) {
			order = append(order, "first:"+resp.BodyString())
			return nil, nil
		},
		func(_ context.Context, _ *broute.Request, resp *broute.Response) (*broute.Response, error) {
			order = append(order, "second:"+resp.BodyString())
			return broute.NewResponseBuilder().SetPlainTextBody("replaced").Build()
		},
		func(_ context.Context, _ *broute.Request, resp *broute.Response) (*broute.Response, error) {
			order = append(order, "third:"+resp.BodyString())
			return nil, nil
		},
	)

	resp, err := dispatch(t, root, http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, "replaced", resp.BodyString())
	assert.Equal(t, []string{"first:original", "second:original", "third:replaced"}, order)
}

func TestEndpointResponseMiddlewareOnNoMatch(t *testing.T) {
	var got *broute.Response
	var called bool
	root := broute.NewRoot()
	root.AddResponseMiddleware(func(_ context.Context, _ *broute.Request, resp *broute.Response) (*broute.Response, error) {
		called, got = true, resp
		return nil, nil
	})

	resp, err := dispatch(t, root, http.MethodGet, "/missing")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.True(t, called)
	assert.Nil(t, got)
}

func TestEndpointRoutingConflict(t *testing.T) {
	root := broute.NewRoot()
	books := root.Route("books")
	books.Get("{id}", textHandler("first"))
	books.Get("1", textHandler("second"))

	_, err := dispatch(t, root, http.MethodGet, "/books/1")
	require.ErrorIs(t, err, broute.ErrRoutingConflict)

	var cerr *broute.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "books/1", cerr.URL)
	assert.Equal(t, "GET: /books/{id}", cerr.First)
	assert.Equal(t, "GET: /books/1", cerr.Second)

	resp, err := dispatch(t, root, http.MethodGet, "/books/2")
	require.NoError(t, err)
	assert.Equal(t, "first", resp.BodyString())
}

func TestEndpointRoutingConflictAcrossEndpoints(t *testing.T) {
	root := broute.NewRoot()
	root.Route("books").Get("1", textHandler("a"))
	root.Route("books").Get("1", textHandler("b"))

	_, err := dispatch(t, root, http.MethodGet, "/books/1")
	require.ErrorIs(t, err, broute.ErrRoutingConflict)
	assert.Contains(t, err.Error(), "/books and /books")
}

func TestEndpointAuthentication(t *testing.T) {
	type user struct{ Name string }

	root := broute.NewRoot()
	root.AddAuthenticationMiddleware(func(_ context.Context, req *broute.Request) (any, error) {
		if req.Header("Authorization") != "Bearer secret" {
			return nil, broute.NewError(broute.CodeUnauthorized, errors.New("missing token"))
		}

		return user{Name: "ann"}, nil
	})
	root.Get("me", func(_ context.Context, req *broute.Request) (*broute.Response, error) {
		return broute.NewResponseBuilder().SetPlainTextBody(req.Authentication.(user).Name).Build() //nolint:forcetypeassert
	})

	_, err := dispatch(t, root, http.MethodGet, "/me")
	assert.Equal(t, broute.CodeUnauthorized, broute.CodeOf(err))

	req, err := broute.NewRequest(http.MethodGet, "/me", map[string][]string{"Authorization": {"Bearer secret"}}, nil)
	require.NoError(t, err)

	resp, err := root.OnRequest(t.Context(), "me", req)
	require.NoError(t, err)
	assert.Equal(t, "ann", resp.BodyString())
}

func TestEndpointReverse(t *testing.T) {
	root := broute.NewRoot()
	root.Route("books").Get("{id}/info.json", textHandler("x"), broute.WithName("get-book"))
	root.Route("authors", broute.WithEndpointParamMatcher(broute.ColonParams)).
		Get(":id", textHandler("x"), broute.WithName("get-author"))

	res, err := root.Route("other").Reverse("get-book", "1234")
	require.NoError(t, err)
	assert.Equal(t, "/books/1234/info.json", res)

	res, err = root.Reverse("get-author", "9")
	require.NoError(t, err)
	assert.Equal(t, "/authors/9", res)

	assert.Equal(t, []string{"get-author", "get-book"}, root.Reverser().Names())

	assert.Panics(t, func() {
		root.Get("again", textHandler("x"), broute.WithName("get-book"))
	})
}

func TestEndpointMarshalJSON(t *testing.T) {
	root := broute.NewRoot()
	root.AddRequestMiddleware(func(context.Context, *broute.Request) error { return nil })
	books := root.Route("books")
	books.Get("{id}", textHandler("x")).Post("", textHandler("y"))
	books.AddResponseMiddleware(broute.CORSMiddleware())

	data, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": "/",
		"requestMiddleware": 1,
		"responseMiddleware": 0,
		"handlers": [],
		"children": [{
			"path": "/books",
			"requestMiddleware": 0,
			"responseMiddleware": 1,
			"handlers": ["GET: /books/{id}", "POST: /books"],
			"children": []
		}]
	}`, string(data))
}
