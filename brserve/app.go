package brserve

import (
	"context"
	"net/http"

	"github.com/advdv/broute"
	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// runtimeProviderParams holds dependencies for Runtime.
type runtimeProviderParams[E Environment] struct {
	fx.In

	Env          E
	Root         *broute.Endpoint
	SecretReader SecretReader
	TracerProv   trace.TracerProvider
	Propagator   propagation.TextMapPropagator
}

// WithAWSClient registers an AWS SDK v2 client for dependency injection.
// Clients are injected directly into handler constructors via fx.
//
// By default, clients target the region from AWS_REGION:
//
//	brserve.WithAWSClient(func(cfg aws.Config) *s3.Client {
//	    return s3.NewFromConfig(cfg)
//	})
//
// For a fixed region, use ForRegion():
//
//	brserve.WithAWSClient(func(cfg aws.Config) *s3.Client {
//	    return s3.NewFromConfig(cfg)
//	}, brserve.ForRegion("eu-west-1"))
func WithAWSClient[T any](factory func(aws.Config) T, opts ...ClientOption) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, AWSClientProvider(factory, opts...))
	}
}

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// WithServerOptions passes extra options to the broute.Server, after the ones derived from the
// environment so they take precedence.
func WithServerOptions(opts ...broute.ServerOption) Option {
	return func(c *AppConfig) {
		c.ServerOptions = append(c.ServerOptions, opts...)
	}
}

// FxOptions returns the fx options that make up the application graph. [NewApp] and the
// brservetest package both build on it.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 18+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func() *broute.Endpoint { return broute.NewRoot() }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(provideAWSConfig),
		fx.Provide(func(cfg aws.Config) (SecretReader, error) {
			return NewAWSSecretReader(cfg)
		}),
		fx.Provide(providePageSource),
		fx.Provide(provideTLSConfig),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Provide(NewHTTPServer),
		fx.Provide(func(p runtimeProviderParams[E]) *Runtime[E] {
			return NewRuntime(p.Env, p.Root, RuntimeParams{
				SecretReader: p.SecretReader,
				Transport:    NewHTTPTransport(p.TracerProv, p.Propagator),
			})
		}),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options.
// At minimum, it should accept the *broute.Endpoint root of the routing tree.
//
// Example:
//
//	brserve.NewApp[Env](func(root *broute.Endpoint, h *Handlers) {
//	    root.Route("/books").Get("/{id}", h.GetBook)
//	},
//	    brserve.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context, blocks until the context is done and
// then stops the application.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
