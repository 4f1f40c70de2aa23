package brservetest

import (
	"net/http"
	"net/http/httptest"

	"github.com/advdv/broute"
)

// CallHandler registers handler for any method at pattern on a fresh routing tree, serves req
// through a [broute.Server] with development messages enabled and returns the recorded
// response. Path parameters in pattern are available to the handler as usual.
func CallHandler(pattern string, handler broute.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	root := broute.NewRoot().All(pattern, handler)
	srv := broute.NewServer(
		broute.WithRoot(root),
		broute.WithDevelopmentMessages(true),
	)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}
