package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dd0wney/starry-habits/pkg/auth"
	"github.com/dd0wney/starry-habits/pkg/logging"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFrom returns the token claims of an authenticated request
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// requireWrite demands a bearer token with write scope when auth is enabled
func (s *Server) requireWrite(next http.HandlerFunc) http.HandlerFunc {
	return s.requireScope(true, next)
}

// requireToken demands any valid bearer token when auth is enabled
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return s.requireScope(false, next)
}

func (s *Server) requireScope(write bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			next(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="starry-habits"`)
			s.respondError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := s.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			s.logger.Warn("token rejected", logging.Path(r.URL.Path), logging.Error(err))
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="starry-habits", error="invalid_token"`)
			s.respondError(w, http.StatusUnauthorized, msg)
			return
		}
		if write && !claims.CanWrite() {
			s.respondError(w, http.StatusForbidden, "Token lacks write scope")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	}
}
