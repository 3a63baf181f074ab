// Package webhooks verifies Stripe webhook deliveries and dispatches them to
// per-event handlers. The handlers only log; no billing state is kept.
package webhooks

import (
	"context"
	"encoding/json"
	"sort"

	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const SignatureHeader = "Stripe-Signature"

// HandlerFunc processes one verified event.
type HandlerFunc func(ctx context.Context, event stripe.Event) error

type Service struct {
	secret   string
	handlers map[stripe.EventType]HandlerFunc
}

// NewService creates a service with the default handlers registered. An empty
// secret leaves the service unconfigured and every delivery is rejected.
func NewService(secret string) *Service {
	s := &Service{
		secret:   secret,
		handlers: make(map[stripe.EventType]HandlerFunc),
	}
	s.Handle(EventPaymentIntentSucceeded, handlePaymentSucceeded)
	s.Handle(EventPaymentIntentFailed, handlePaymentFailed)
	s.Handle(EventSubscriptionCreated, handleSubscriptionCreated)
	s.Handle(EventSubscriptionUpdated, handleSubscriptionUpdated)
	s.Handle(EventSubscriptionDeleted, handleSubscriptionDeleted)
	s.Handle(EventInvoicePaymentSucceeded, handleInvoicePaymentSucceeded)
	s.Handle(EventInvoicePaymentFailed, handleInvoicePaymentFailed)
	return s
}

// Handle registers or replaces the handler for an event type.
func (s *Service) Handle(eventType stripe.EventType, h HandlerFunc) {
	s.handlers[eventType] = h
}

func (s *Service) Configured() bool {
	return s.secret != ""
}

// SupportedEvents lists the event types with a registered handler.
func (s *Service) SupportedEvents() []string {
	events := make([]string, 0, len(s.handlers))
	for t := range s.handlers {
		events = append(events, string(t))
	}
	sort.Strings(events)
	return events
}

// Verify checks the signature header against the payload and decodes the event.
func (s *Service) Verify(payload []byte, signature string) (stripe.Event, error) {
	if !s.Configured() {
		return stripe.Event{}, apperrors.ErrWebhookNotConfigured
	}
	if signature == "" {
		return stripe.Event{}, apperrors.ErrMissingSignature
	}
	if !json.Valid(payload) {
		return stripe.Event{}, apperrors.ErrInvalidPayload
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, apperrors.Wrapf(apperrors.ErrInvalidSignature, "%v", err)
	}
	return event, nil
}

// Process dispatches a verified event. Unhandled event types are acknowledged.
func (s *Service) Process(ctx context.Context, event stripe.Event) error {
	log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("received webhook event")

	handler, ok := s.handlers[event.Type]
	if !ok {
		log.Info().Str("event_type", string(event.Type)).Msg("unhandled webhook event type")
		return nil
	}
	if err := handler(ctx, event); err != nil {
		log.Err(err).Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("webhook handler failed")
		return err
	}
	return nil
}
