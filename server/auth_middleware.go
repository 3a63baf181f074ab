package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
)

// ClaimsHandlerFunc is a handler that receives the verified session claims.
type ClaimsHandlerFunc func(w http.ResponseWriter, r *http.Request, claims *token.Claims)

// RequireCookieAuth guards browser routes with the session cookie. Requests
// without a valid token are redirected to the login route.
func (s *Server) RequireCookieAuth(next ClaimsHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.cookieClaims(r)
		if !ok {
			http.Redirect(w, r, RouteLogin, http.StatusFound)
			return
		}
		next(w, r, claims)
	}
}

// RequireBearerAuth guards API routes with an Authorization: Bearer token.
// Requests without a valid token receive a 401 JSON error.
func (s *Server) RequireBearerAuth(next ClaimsHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}
		claims, err := s.tokens.Verify(raw)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("bearer token rejected")
			writeUnauthorized(w)
			return
		}
		next(w, r, claims)
	}
}

// cookieClaims verifies the session cookie, if any.
func (s *Server) cookieClaims(r *http.Request) (*token.Claims, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := s.tokens.Verify(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("session cookie rejected")
		return nil, false
	}
	return claims, true
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, raw, found := strings.Cut(authHeader, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:   "Authentication required",
		Message: "Please provide a valid Bearer token",
	})
}
