package brserve

import (
	"context"
	"net/http"

	"github.com/advdv/broute"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *brserve.Runtime[Env]
//	}
//
//	func NewHandlers(rt *brserve.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
//
//	func (h *Handlers) GetBook(ctx context.Context, req *broute.Request) (*broute.Response, error) {
//	    self, _ := h.rt.Reverse("get-book", req.URL.Param("id"))
//	    // ...
//	}
type Runtime[E Environment] struct {
	env          E
	root         *broute.Endpoint
	secretReader SecretReader
	transport    http.RoundTripper
}

// RuntimeParams holds optional dependencies for Runtime.
type RuntimeParams struct {
	SecretReader SecretReader
	Transport    http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, root *broute.Endpoint, params RuntimeParams) *Runtime[E] {
	transport := params.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Runtime[E]{
		env:          env,
		root:         root,
		secretReader: params.SecretReader,
		transport:    transport,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Root returns the root of the routing tree.
func (r *Runtime[E]) Root() *broute.Endpoint {
	return r.root
}

// Reverse returns the URL for a named handler with the given parameters.
// The handler must have been registered with broute.WithName.
func (r *Runtime[E]) Reverse(name string, vals ...string) (string, error) {
	return r.root.Reverse(name, vals...)
}

// Secret reads a secret through the app's [SecretReader]. With a jsonPath the secret is parsed
// as JSON and the value at that gjson path ("database.password", "api.keys.0") is returned,
// otherwise the raw string. Reads go through the secret cache so rotation needs no redeploy.
func (r *Runtime[E]) Secret(ctx context.Context, secretID string, jsonPath ...string) (string, error) {
	if len(jsonPath) > 1 {
		return "", errors.New("brserve: Secret accepts at most one jsonPath argument")
	}

	vals, err := readSecretFields(ctx, r.secretReader, secretID, lo.Compact(jsonPath)...)
	if err != nil {
		return "", err
	}

	return vals[0], nil
}

// NewRequest returns a request builder for outbound calls. It uses the traced transport so calls
// show up as child spans of the incoming request, and identifies the service in User-Agent.
//
//	var out Book
//	err := h.rt.NewRequest().BaseURL("https://api.example.com").Path("/books/1").ToJSON(&out).Fetch(ctx)
func (r *Runtime[E]) NewRequest() *requests.Builder {
	rb := requests.New().Transport(r.transport)
	if name := r.env.serviceName(); name != "" {
		rb = rb.UserAgent(name + " (broute)")
	}

	return rb
}

// NewHTTPTransport wraps the default transport with OpenTelemetry client spans and trace
// propagation, using the app's provider and propagator instead of the globals.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Host
		}),
	)
}

// NewHTTPClient returns a client on the traced transport for code that needs a plain
// *http.Client, such as third-party SDKs.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}
