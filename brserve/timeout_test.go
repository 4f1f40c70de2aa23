package brserve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/advdv/broute/brserve"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutConfig_ServerTimeouts(t *testing.T) {
	tests := []struct {
		name                  string
		requestTimeout        time.Duration
		wantReadHeaderTimeout time.Duration
		wantIdleTimeout       time.Duration
	}{
		{
			name:                  "short timeout caps header timeout at the timeout",
			requestTimeout:        3 * time.Second,
			wantReadHeaderTimeout: 3 * time.Second,
			wantIdleTimeout:       6 * time.Second,
		},
		{
			name:                  "typical timeout caps header timeout at 5s",
			requestTimeout:        30 * time.Second,
			wantReadHeaderTimeout: 5 * time.Second,
			wantIdleTimeout:       time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := brserve.TimeoutConfig{RequestTimeout: tt.requestTimeout}
			rht, rt, wt, it := tc.ServerTimeouts()

			assert.Equal(t, tt.wantReadHeaderTimeout, rht, "ReadHeaderTimeout")
			assert.Equal(t, tt.requestTimeout, rt, "ReadTimeout")
			assert.Equal(t, tt.requestTimeout, wt, "WriteTimeout")
			assert.Equal(t, tt.wantIdleTimeout, it, "IdleTimeout")
		})
	}
}

func TestTimeoutConfig_RequestDeadline(t *testing.T) {
	tests := []struct {
		name           string
		requestTimeout time.Duration
		deadlineBuffer time.Duration
		want           time.Duration
	}{
		{"default buffer", 30 * time.Second, 0, 30*time.Second - brserve.DefaultDeadlineBuffer},
		{"custom buffer", 30 * time.Second, time.Second, 29 * time.Second},
		{"buffer equals timeout falls back to full timeout", 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := brserve.TimeoutConfig{RequestTimeout: tt.requestTimeout, DeadlineBuffer: tt.deadlineBuffer}
			assert.Equal(t, tt.want, tc.RequestDeadline())
		})
	}
}

func TestWithRequestDeadline(t *testing.T) {
	t.Run("sets deadline", func(t *testing.T) {
		var remaining time.Duration
		handler := brserve.WithRequestDeadline(10 * time.Second)(
			http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				remaining = brserve.RequestRemainingTime(r.Context())
			}),
		)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Greater(t, remaining, 9*time.Second)
		assert.LessOrEqual(t, remaining, 10*time.Second)
	})

	t.Run("keeps earlier parent deadline", func(t *testing.T) {
		var remaining time.Duration
		handler := brserve.WithRequestDeadline(time.Hour)(
			http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				remaining = brserve.RequestRemainingTime(r.Context())
			}),
		)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

		assert.LessOrEqual(t, remaining, time.Second)
	})

	t.Run("non-positive duration disables the deadline", func(t *testing.T) {
		var hasDeadline bool
		handler := brserve.WithRequestDeadline(0)(
			http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				_, hasDeadline = r.Context().Deadline()
			}),
		)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, hasDeadline)
	})
}

func TestRequestRemainingTime(t *testing.T) {
	assert.Equal(t, time.Duration(0), brserve.RequestRemainingTime(context.Background()))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Equal(t, time.Duration(0), brserve.RequestRemainingTime(ctx))
}
