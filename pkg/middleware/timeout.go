package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/daye10/textsearch/pkg/logger"
)

// Timeout bounds request handling. The wrapped handler runs with a
// deadline-carrying context; if the deadline passes before it has written
// anything, the client gets 504 and the late response is discarded.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			dw := &deadlineWriter{inner: w}
			finished := make(chan struct{})
			go func() {
				defer close(finished)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-finished:
			case <-ctx.Done():
				if dw.expire() {
					logger.FromContext(r.Context()).Warn("request deadline exceeded",
						"method", r.Method,
						"path", r.URL.Path,
						"limit", limit,
					)
					http.Error(w, `{"error":"request timeout"}`, http.StatusGatewayTimeout)
				}
			}
		})
	}
}

// deadlineWriter suppresses writes that race the timeout response. state
// moves monotonically from pending to either writing or expired; only the
// winner touches the underlying ResponseWriter.
type deadlineWriter struct {
	inner http.ResponseWriter
	state atomic.Int32 // 0 pending, 1 handler writing, 2 expired
}

func (d *deadlineWriter) claim() bool {
	return d.state.CompareAndSwap(0, 1) || d.state.Load() == 1
}

func (d *deadlineWriter) expire() bool {
	return d.state.CompareAndSwap(0, 2)
}

func (d *deadlineWriter) Header() http.Header {
	return d.inner.Header()
}

func (d *deadlineWriter) WriteHeader(code int) {
	if d.claim() {
		d.inner.WriteHeader(code)
	}
}

func (d *deadlineWriter) Write(b []byte) (int, error) {
	if !d.claim() {
		return len(b), nil
	}
	return d.inner.Write(b)
}
