package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-gateway-auth/gateway"
	"github.com/jrsteele09/go-gateway-auth/token"
	"github.com/rs/zerolog/log"
)

type createKeyRequest struct {
	Key string `json:"key"`
}

// writeGatewayError maps a gateway failure onto the response status.
func writeGatewayError(w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		log.Err(err).Msg("Gateway: unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
		return
	}

	status := http.StatusBadGateway
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		status = apiErr.StatusCode
	}
	message := apiErr.Message
	if apiErr.StatusCode == 0 {
		message = "The API gateway could not be reached"
	}
	writeJSON(w, status, errorResponse{Error: "Gateway error", Message: message})
}

func (s *Server) ListKeysHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		keys, err := s.gateway.ListKeys(r.Context(), claims.Email)
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"keys": keys, "count": len(keys)})
	}
}

// CreateKeyHandler creates a key for the caller. The body is optional; {"key": "..."} picks the key value.
func (s *Server) CreateKeyHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		var req createKeyRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "Body must be a JSON object"})
			return
		}

		key, err := s.gateway.CreateKey(r.Context(), claims.Email, req.Key)
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, key)
	}
}

func (s *Server) RevokeKeyHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		if err := s.gateway.RevokeKey(r.Context(), claims.Email, r.PathValue("keyID")); err != nil {
			writeGatewayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "API key revoked successfully"})
	}
}

func (s *Server) GatewayInfoHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		info, err := s.gateway.ConsumerInfo(r.Context(), claims.Email)
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"gateway_url": s.config.GetKongGatewayURL(),
			"provisioned": info.Provisioned,
			"consumer":    info.Consumer,
			"keys":        info.Keys,
		})
	}
}

// DeprovisionHandler removes the caller's consumer and keys. The session stays valid.
func (s *Server) DeprovisionHandler() ClaimsHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, claims *token.Claims) {
		if err := s.gateway.Deprovision(r.Context(), claims.Email); err != nil {
			writeGatewayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Gateway access removed"})
	}
}

// HealthHandler reports whether the gateway admin API is reachable
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := s.health.HealthCheck(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("Health: gateway check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "unhealthy",
				"gateway": map[string]any{"reachable": false, "error": err.Error()},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "healthy",
			"gateway": map[string]any{"reachable": true, "status": status},
		})
	}
}
