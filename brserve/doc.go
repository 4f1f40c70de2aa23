// Package brserve provides a batteries-included runtime for serving a broute routing tree.
//
// # Overview
//
// brserve handles the boilerplate of running a broute tree as a service: environment parsing,
// structured logging, OpenTelemetry tracing, AWS SDK clients, HTTP/1 and HTTP/2 listeners with
// optional TLS, custom error pages and graceful shutdown. A complete application can be created
// in a single call:
//
//	brserve.NewApp[Env](func(root *broute.Endpoint, h *Handlers) {
//	    books := root.Route("/books")
//	    books.Get("/{id}/info.json", h.GetBook, broute.WithName("get-book"))
//	},
//	    brserve.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    brserve.BaseEnvironment
//	    CatalogURL string `env:"CATALOG_URL,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                 | Required | Default | Description                                        |
//	|--------------------------|----------|---------|----------------------------------------------------|
//	| BR_SERVICE_NAME          | Yes      | -       | Service name for logging and tracing               |
//	| BR_PORT                  | No       | 8080    | Port the HTTP server listens on                    |
//	| BR_HEALTH_CHECK_PATH     | No       | /health | Health check path, answered before routing         |
//	| BR_LOG_LEVEL             | No       | info    | Log level (debug, info, warn, error)               |
//	| BR_OTEL_EXPORTER         | No       | stdout  | Trace exporter: "stdout", "xrayudp" or "none"      |
//	| BR_DEVELOPMENT_MESSAGES  | No       | false   | Plain-text error diagnostics instead of pages      |
//	| BR_REQUEST_TIMEOUT       | No       | 30s     | Total time a request may take                      |
//	| BR_H2C                   | No       | true    | Accept HTTP/2 over cleartext when TLS is off       |
//	| BR_TLS_CERT_FILE         | No       | -       | PEM certificate, set together with the key file    |
//	| BR_TLS_KEY_FILE          | No       | -       | PEM private key                                    |
//	| BR_TLS_SECRET_ID         | No       | -       | Secret with "certificate" and "privateKey" fields  |
//	| BR_SECRET_CACHE_TTL      | No       | 1h      | How long a read secret is reused                   |
//	| BR_ERROR_PAGES_BUCKET    | No       | -       | S3 bucket holding 404.html and 500.html            |
//	| BR_ERROR_PAGES_PREFIX    | No       | -       | Key prefix of the error pages                      |
//	| AWS_REGION               | No       | -       | AWS region for the SDK clients                     |
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into handler
// constructors via fx:
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Root] returns the routing tree
//   - [Runtime.Reverse] generates URLs for named handlers
//   - [Runtime.Secret] retrieves secrets from AWS Secrets Manager
//   - [Runtime.NewRequest] builds traced outbound requests
//
// # Request Context
//
// Request-scoped values are read from the context passed to every handler and middleware:
//
//	brserve.Log(ctx).Info("loading book", zap.String("id", req.URL.Param("id")))
//	brserve.Span(ctx).AddEvent("book-loaded")
//
// Inside the routing tree [Request] returns the dispatched *broute.Request and the logger
// carries the method and dispatch key, and trace_id and span_id when the request is traced.
//
// # Timeouts
//
// The http.Server timeouts follow BR_REQUEST_TIMEOUT. Every request context additionally gets a
// deadline of BR_REQUEST_TIMEOUT minus [DefaultDeadlineBuffer] so handlers stop with time left
// to write the error response. Use [RequestRemainingTime] to budget downstream calls.
//
// # Error Pages
//
// When BR_ERROR_PAGES_BUCKET is set, the broute server reads 404.html and 500.html through an
// [S3PageSource]. Pages are read once per process and the built-in page is used when a read
// fails.
//
// # Testing
//
// The brservetest package builds the identical graph on top of fxtest and serves requests
// in-process through the full handler chain.
package brserve
