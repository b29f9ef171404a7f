package middleware

import (
	"net/http"

	"notegate/internal/platform/logger"
	pnet "notegate/internal/platform/net"

	"github.com/google/uuid"
)

// RequestID assigns a uuid to every request and mirrors it in the response header
// Inbound X-Request-ID values are honored so a client can correlate retries
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := pnet.WithRequestID(r.Context(), reqID)
		ctx = logger.WithRequest(ctx, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
