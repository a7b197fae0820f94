package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const identityKey ctxKey = iota

// identity extracts the bearer token, if any, and stores the verified
// identifier in the request context. Tokens are optional: endpoints fall
// back to identifiers supplied in the body or query string, so an invalid
// token simply leaves the request anonymous.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			if id, err := s.auth.VerifyToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// tokenIdentity returns the identifier carried by a verified token, or "".
func tokenIdentity(r *http.Request) string {
	id, _ := r.Context().Value(identityKey).(string)
	return id
}

// callerID resolves the acting identity: a verified token wins, otherwise
// the first non-empty fallback (body or query field) is used.
func callerID(r *http.Request, fallbacks ...string) string {
	if id := tokenIdentity(r); id != "" {
		return id
	}
	for _, fb := range fallbacks {
		if fb != "" {
			return fb
		}
	}
	return ""
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
