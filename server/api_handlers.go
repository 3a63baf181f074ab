package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type profileResponse struct {
	UserID  string  `json:"user_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
}

type dataItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var sampleItems = []dataItem{
	{ID: 1, Name: "Item 1", Description: "First item"},
	{ID: 2, Name: "Item 2", Description: "Second item"},
	{ID: 3, Name: "Item 3", Description: "Third item"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

// GetAuthTokenHandler returns the session cookie's token for browser scripts
func (s *Server) GetAuthTokenHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ *token.Claims) {
		writeJSON(w, http.StatusOK, map[string]string{"token": sessionToken(r)})
	}
}

func (s *Server) ProfileHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		writeJSON(w, http.StatusOK, profileResponse{
			UserID:  claims.UserID,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
		})
	}
}

func (s *Server) ProtectedHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "This is a protected API endpoint",
			"user":      claims.Email,
			"timestamp": token.NowTimeFunc().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) DataHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": sampleItems,
			"user": claims.Email,
		})
	}
}
