package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MJE43/fair-go/internal/logging"
)

// RequestLogger logs each completed request. Bodies are never logged.
func (s *Server) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// CORSMiddleware allows any origin; the API holds no cookies.
func (s *Server) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// audit starts an operation log entry. Seeds only ever appear as
// fingerprints.
func (s *Server) audit(r *http.Request, op string) *zerolog.Event {
	return s.log.Info().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("op", op)
}

func seedFields(ev *zerolog.Event, serverSeed, clientSeed string) *zerolog.Event {
	return ev.
		Str("server_seed_fp", logging.SeedFingerprint(serverSeed)).
		Str("client_seed_fp", logging.SeedFingerprint(clientSeed))
}
