package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aura-baza/aura-hr/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID reuses an incoming trace id or mints one, echoes it on the
// response and puts a logger carrying it into the request context.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			lg := logger.FromOr(r.Context(), base).With("trace_id", traceID)
			ctx := logger.Into(r.Context(), lg)

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
