// Package brservetest provides test helpers for brserve applications.
//
// [New] builds the same graph as [brserve.NewApp] on top of [fxtest.App], so graph errors fail
// the test right away. Requests can be served in-process with [App.Do], or over the network
// after [fxtest.App.RequireStart]:
//
//	brservetest.SetBaseEnv(t, 18081)
//	app := brservetest.New[TestEnv](t, routing, brserve.WithFx(...))
//	rec := app.Do(httptest.NewRequest(http.MethodGet, "/books/1", nil))
package brservetest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/broute"
	"github.com/advdv/broute/brserve"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// App is a brserve application under test.
type App struct {
	*fxtest.App

	server  *broute.Server
	handler http.Handler
}

// New creates a test app with the same graph as [brserve.NewApp].
func New[E brserve.Environment](tb testing.TB, routing any, opts ...brserve.Option) *App {
	tb.Helper()

	var (
		app  App
		hsrv *http.Server
	)

	app.App = fxtest.New(tb, append(brserve.FxOptions[E](routing, opts...), fx.Populate(&app.server, &hsrv))...)
	if hsrv != nil {
		app.handler = hsrv.Handler
	}

	return &app
}

// Server returns the broute server of the app.
func (a *App) Server() *broute.Server { return a.server }

// Root returns the routing tree after the routing function ran.
func (a *App) Root() *broute.Endpoint { return a.server.Root() }

// Do serves req in-process through the app's full handler chain, health check and tracing
// included, and returns the recorded response. The app does not need to be started.
func (a *App) Do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	return rec
}
