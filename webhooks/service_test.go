package webhooks_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-gateway-auth/internal/errors"
	"github.com/jrsteele09/go-gateway-auth/webhooks"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
)

const testSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_123",
		"object": "event",
		"type": %q,
		"api_version": "2020-08-27",
		"created": 1700000000,
		"data": {"object": {"id": "pi_123", "amount": 2000, "currency": "usd", "customer": "cus_9"}}
	}`, eventType))
}

func TestService_Verify(t *testing.T) {
	svc := webhooks.NewService(testSecret)
	payload := eventPayload("payment_intent.succeeded")

	t.Run("valid signature", func(t *testing.T) {
		event, err := svc.Verify(payload, signPayload(payload, testSecret, time.Now()))
		require.NoError(t, err)
		require.Equal(t, "evt_123", event.ID)
		require.Equal(t, webhooks.EventPaymentIntentSucceeded, event.Type)
		require.Equal(t, int64(2000), gjson.GetBytes(event.Data.Raw, "amount").Int())
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := webhooks.NewService("").Verify(payload, signPayload(payload, testSecret, time.Now()))
		require.ErrorIs(t, err, apperrors.ErrWebhookNotConfigured)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := svc.Verify(payload, "")
		require.ErrorIs(t, err, apperrors.ErrMissingSignature)
	})

	t.Run("invalid json", func(t *testing.T) {
		body := []byte(`{"id": "evt_1",`)
		_, err := svc.Verify(body, signPayload(body, testSecret, time.Now()))
		require.ErrorIs(t, err, apperrors.ErrInvalidPayload)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.Verify(payload, signPayload(payload, "whsec_other", time.Now()))
		require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("modified payload", func(t *testing.T) {
		signature := signPayload(payload, testSecret, time.Now())
		_, err := svc.Verify(eventPayload("invoice.payment_failed"), signature)
		require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		_, err := svc.Verify(payload, signPayload(payload, testSecret, time.Now().Add(-time.Hour)))
		require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		_, err := svc.Verify(payload, "garbage")
		require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	})
}

func TestService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("default handlers accept their events", func(t *testing.T) {
		svc := webhooks.NewService(testSecret)
		require.Len(t, svc.SupportedEvents(), 7)
		for _, eventType := range svc.SupportedEvents() {
			payload := eventPayload(eventType)
			event, err := svc.Verify(payload, signPayload(payload, testSecret, time.Now()))
			require.NoError(t, err)
			require.NoError(t, svc.Process(ctx, event), eventType)
		}
	})

	t.Run("event without data", func(t *testing.T) {
		svc := webhooks.NewService(testSecret)
		require.NoError(t, svc.Process(ctx, stripe.Event{Type: webhooks.EventSubscriptionDeleted}))
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		svc := webhooks.NewService(testSecret)
		require.NoError(t, svc.Process(ctx, stripe.Event{ID: "evt_x", Type: "charge.refunded"}))
	})

	t.Run("dispatches to the registered handler", func(t *testing.T) {
		svc := webhooks.NewService(testSecret)
		var got string
		svc.Handle(webhooks.EventInvoicePaymentFailed, func(_ context.Context, event stripe.Event) error {
			got = event.ID
			return nil
		})
		require.NoError(t, svc.Process(ctx, stripe.Event{ID: "evt_inv", Type: webhooks.EventInvoicePaymentFailed}))
		require.Equal(t, "evt_inv", got)
	})

	t.Run("handler failure is returned", func(t *testing.T) {
		svc := webhooks.NewService(testSecret)
		boom := errors.New("boom")
		svc.Handle(webhooks.EventPaymentIntentFailed, func(context.Context, stripe.Event) error { return boom })
		require.ErrorIs(t, svc.Process(ctx, stripe.Event{Type: webhooks.EventPaymentIntentFailed}), boom)
	})
}
