package server

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/dygy/codegroove/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with a UUID and a request-scoped logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := logging.WithLogger(r.Context(), s.logger.With("request_id", id))
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.Scope().SetTag("request_id", id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit rejects requests once the shared token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at MaxSourceBytes.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.MaxSourceBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxSourceBytes)
		}
		next.ServeHTTP(w, r)
	})
}
