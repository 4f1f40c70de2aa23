package brserve

import (
	"context"
	"net/http"

	"github.com/advdv/broute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const ctxKeyRequestState ctxKey = iota

// requestState is created per http request before routing starts. Once the request reaches
// the routing tree it also holds the parsed broute request.
type requestState struct {
	logger  *zap.Logger
	request *broute.Request
}

// withRequestState gives every http request its own state, logging to logger.
func withRequestState(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKeyRequestState, &requestState{logger: logger})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// recordRequest is a request middleware for the root endpoint. It makes the dispatched request
// available to code that only has the context.
func recordRequest(ctx context.Context, req *broute.Request) error {
	if st, ok := ctx.Value(ctxKeyRequestState).(*requestState); ok {
		st.request = req
	}

	return nil
}

func requestStateFromContext(ctx context.Context) *requestState {
	st, ok := ctx.Value(ctxKeyRequestState).(*requestState)
	if !ok {
		panic("brserve: request state not found in context; is the middleware configured?")
	}

	return st
}

// Request returns the broute request being dispatched. It is nil until the request reached the
// routing tree, for example in the health check handler.
func Request(ctx context.Context) *broute.Request {
	return requestStateFromContext(ctx).request
}

// Log returns a zap logger for the request in ctx. Inside the routing tree it carries the method
// and dispatch key, and trace_id and span_id when the request is traced.
func Log(ctx context.Context) *zap.Logger {
	st := requestStateFromContext(ctx)
	return st.logger.With(append(requestFields(st.request), traceFields(ctx)...)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

func requestFields(req *broute.Request) []zap.Field {
	if req == nil {
		return nil
	}

	return []zap.Field{
		zap.String("method", req.Method),
		zap.String("dispatch_key", broute.DispatchKey(req.URL.RequestURI())),
	}
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
