package brserve

import (
	"context"
	"net/http"
	"time"
)

// Timeout configuration
//
// Two tiers apply. The http.Server timeouts are derived from BR_REQUEST_TIMEOUT and bound the
// connection. Every request additionally gets a context deadline of BR_REQUEST_TIMEOUT minus a
// small buffer, so handlers and downstream calls give up while there is still time to write an
// error response before the server closes the connection.

// DefaultDeadlineBuffer is the default time reserved before the write timeout for error
// responses.
const DefaultDeadlineBuffer = 500 * time.Millisecond

// TimeoutConfig holds timeout configuration for the HTTP server.
type TimeoutConfig struct {
	// RequestTimeout is the total time a request may take.
	RequestTimeout time.Duration

	// DeadlineBuffer is subtracted from RequestTimeout for the per-request context deadline.
	// Defaults to DefaultDeadlineBuffer.
	DeadlineBuffer time.Duration
}

// ServerTimeouts returns the http.Server timeout values for the request timeout.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	timeout := tc.RequestTimeout

	// ReadHeaderTimeout: How long to wait for request headers.
	readHeaderTimeout = min(timeout, 5*time.Second)

	// ReadTimeout: Time from connection accept to request body fully read.
	readTimeout = timeout

	// WriteTimeout: Time from request header read end to response write end.
	writeTimeout = timeout

	// IdleTimeout: How long to keep idle keep-alive connections.
	idleTimeout = 2 * timeout

	return
}

// RequestDeadline returns the per-request deadline duration: the request timeout minus the
// buffer, or the full timeout when the buffer does not fit.
func (tc TimeoutConfig) RequestDeadline() time.Duration {
	buffer := tc.DeadlineBuffer
	if buffer <= 0 {
		buffer = DefaultDeadlineBuffer
	}

	d := tc.RequestTimeout - buffer
	if d <= 0 {
		d = tc.RequestTimeout // fallback if buffer >= timeout
	}

	return d
}

// WithRequestDeadline returns middleware that bounds the request context to d. A request
// context that already ends earlier is left untouched. A non-positive d disables the deadline.
func WithRequestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	remaining := time.Until(deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
