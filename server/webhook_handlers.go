package server

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
	"github.com/jrsteele09/go-gateway-auth/webhooks"
	"github.com/rs/zerolog/log"
)

// maxWebhookBytes matches the payload limit Stripe documents for webhook events.
const maxWebhookBytes = 65536

// StripeWebhookHandler verifies and dispatches a Stripe delivery (POST /stripe/webhook)
func (s *Server) StripeWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Unable to read request body"})
			return
		}

		event, err := s.webhooks.Verify(payload, r.Header.Get(webhooks.SignatureHeader))
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, apperrors.ErrWebhookNotConfigured) {
				status = http.StatusInternalServerError
			}
			log.Warn().Err(err).Msg("Webhook: rejected delivery")
			writeJSON(w, status, errorResponse{Error: webhookErrorMessage(err)})
			return
		}

		if err := s.webhooks.Process(r.Context(), event); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Webhook processing failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func webhookErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrWebhookNotConfigured):
		return "Webhook secret not configured"
	case errors.Is(err, apperrors.ErrMissingSignature):
		return "Missing signature"
	case errors.Is(err, apperrors.ErrInvalidPayload):
		return "Invalid payload"
	default:
		return "Invalid signature"
	}
}

// StripeWebhookTestHandler reports the webhook configuration (GET /stripe/webhook/test)
func (s *Server) StripeWebhookTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":             "ok",
			"webhook_configured": s.webhooks.Configured(),
			"stripe_configured":  s.config.GetStripeSecretKey() != "",
			"endpoint":           s.externalURL(RouteStripeWebhook),
			"supported_events":   s.webhooks.SupportedEvents(),
		})
	}
}
