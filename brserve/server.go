package brserve

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
	ServerOptions []broute.ServerOption
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Root       *broute.Endpoint
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
	PageSource broute.PageSource `optional:"true"`
	TLS        *tls.Config       `optional:"true"`
}

// NewServer creates the broute server that dispatches into the routing tree. The root endpoint
// gets a request middleware that makes the request available to [Request] and [Log].
func NewServer(params ServerParams, cfg ServerConfig) *broute.Server {
	params.Root.AddRequestMiddleware(recordRequest)

	opts := []broute.ServerOption{
		broute.WithRoot(params.Root),
		broute.WithDevelopmentMessages(params.Env.developmentMessages()),
		broute.WithLogger(newZapBrouteLogger(params.Logger)),
	}

	if params.PageSource != nil {
		opts = append(opts, broute.WithPageSource(params.PageSource))
	}

	return broute.NewServer(append(opts, cfg.ServerOptions...)...)
}

// NewHTTPServer creates an HTTP server with all middleware and routing configured.
func NewHTTPServer(params ServerParams, cfg ServerConfig, srv *broute.Server) (*http.Server, error) {
	tc := TimeoutConfig{RequestTimeout: params.Env.requestTimeout()}

	// The health check is answered before the routing tree and is not traced to avoid noisy
	// traces from load balancer health checks.
	healthPath := params.Env.healthCheckPath()
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	var handler http.Handler = srv
	handler = withHealthCheck(healthPath, healthHandler)(handler)
	handler = WithRequestDeadline(tc.RequestDeadline())(handler)
	handler = withRequestState(params.Logger)(handler)

	// Add tracing with explicit provider injection (no globals).
	handler = withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(handler)

	if params.TLS == nil && params.Env.h2c() {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		TLSConfig:         params.TLS,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	if params.TLS != nil {
		if err := http2.ConfigureServer(server, &http2.Server{}); err != nil {
			return nil, errors.Wrap(err, "failed to configure http2")
		}
	}

	return server, nil
}

// provideTLSConfig loads the listener's TLS material with a timeout.
func provideTLSConfig(env Environment, secrets SecretReader) (*tls.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()

	return LoadTLSConfig(ctx, env, secrets)
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %q", server.Addr)
			}

			logger.Info("starting server",
				zap.String("addr", ln.Addr().String()),
				zap.Bool("tls", server.TLSConfig != nil))

			go func() {
				var err error
				if server.TLSConfig != nil {
					err = server.ServeTLS(ln, "", "")
				} else {
					err = server.Serve(ln)
				}

				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

// withHealthCheck answers requests for path with h, all other requests go to the next handler.
func withHealthCheck(path string, h http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == path {
				h(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
