package server

import (
	"crypto/subtle"
	"net/http"

	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
	"github.com/jrsteele09/go-gateway-auth/server/authflowrepo"
	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
)

// LoginHandler starts the authorization code flow (GET /login)
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		authState := &authflowrepo.AuthFlowState{
			ReturnURL: RouteDashboard,
			CreatedAt: token.NowTimeFunc(),
		}
		if err := s.authState.Save(r.Context(), state, authState, s.config.GetOAuthStateTimeout()); err != nil {
			log.Err(err).Msg("Login: failed to store oauth state")
			s.renderError(w, http.StatusInternalServerError, "Unable to start login")
			return
		}

		s.setStateCookie(w, state)
		http.Redirect(w, r, s.identity.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the login (GET /callback). Gateway
// provisioning runs before the session is issued but never blocks it.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.FormValue("error"); errorParam != "" {
			log.Warn().Str("error", errorParam).Str("description", r.FormValue("error_description")).Msg("Callback: provider returned an error")
			s.renderError(w, http.StatusBadRequest, "Authorization failed: "+errorParam)
			return
		}

		authState, err := s.consumeState(r)
		if err != nil {
			log.Warn().Err(err).Msg("Callback: state check failed")
			s.clearStateCookie(w)
			s.renderError(w, http.StatusBadRequest, "Invalid state parameter")
			return
		}
		s.clearStateCookie(w)

		code := r.FormValue("code")
		if code == "" {
			log.Warn().Err(apperrors.ErrMissingCode).Msg("Callback: no code in request")
			s.renderError(w, http.StatusBadRequest, "Authorization code not found")
			return
		}

		user, err := s.identity.Exchange(r.Context(), code)
		if err != nil {
			log.Err(err).Msg("Callback: identity exchange failed")
			s.renderError(w, http.StatusBadRequest, "OAuth error: unable to complete sign in")
			return
		}

		outcome := s.gateway.EnsureConsumer(r.Context(), *user)
		log.Info().
			Str("email", user.Email).
			Bool("gateway_success", outcome.Success).
			Str("consumer_id", outcome.ConsumerID).
			Bool("duplicate", outcome.Duplicate).
			Str("gateway_error", outcome.Error).
			Msg("Callback: gateway provisioning finished")

		raw, err := s.tokens.Issue(*user)
		if err != nil {
			log.Err(err).Msg("Callback: failed to issue session token")
			s.renderError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		s.SetSessionCookie(w, raw)

		returnURL := authState.ReturnURL
		if returnURL == "" || returnURL == "/" {
			returnURL = RouteDashboard
		}
		http.Redirect(w, r, returnURL, http.StatusFound)
	}
}

// consumeState checks the state parameter against the browser's state cookie
// and removes it from the store so it cannot be replayed.
func (s *Server) consumeState(r *http.Request) (*authflowrepo.AuthFlowState, error) {
	state := r.FormValue("state")
	if state == "" {
		return nil, apperrors.ErrInvalidState
	}
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return nil, apperrors.ErrInvalidState
	}
	authState, err := s.authState.Consume(r.Context(), state)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidState, "%v", err)
	}
	return authState, nil
}

// LogoutHandler clears the session cookie (GET /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}
