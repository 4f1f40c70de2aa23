package brserve

import (
	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON logger of the service at BR_LOG_LEVEL. Every entry carries the
// service name so logs of several broute services can share a sink.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": env.serviceName()}

	return cfg.Build()
}

// zapLogger reports the broute server's errors with the fields needed to find the failing
// registration.
type zapLogger struct{ *zap.Logger }

func newZapBrouteLogger(l *zap.Logger) broute.Logger {
	return zapLogger{l.Named("broute").Named("brserve")}
}

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", serveErrorFields(err)...)
}

func (l zapLogger) LogResponseWriteError(err error) {
	l.Logger.Warn("error while writing response", zap.Error(err))
}

// serveErrorFields adds the status the error maps to and, for routing conflicts, the dispatch
// key with both handlers that answered it.
func serveErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if code := broute.CodeOf(err); code != broute.CodeUnknown {
		fields = append(fields, zap.Int("code", int(code)))
	}

	var conflict *broute.ConflictError
	if errors.As(err, &conflict) {
		fields = append(fields,
			zap.String("dispatch_key", conflict.URL),
			zap.Strings("handlers", []string{conflict.First, conflict.Second}))
	}

	return fields
}
