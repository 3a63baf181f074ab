package webhooks

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
)

const (
	EventPaymentIntentSucceeded  stripe.EventType = "payment_intent.succeeded"
	EventPaymentIntentFailed     stripe.EventType = "payment_intent.payment_failed"
	EventSubscriptionCreated     stripe.EventType = "customer.subscription.created"
	EventSubscriptionUpdated     stripe.EventType = "customer.subscription.updated"
	EventSubscriptionDeleted     stripe.EventType = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded stripe.EventType = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    stripe.EventType = "invoice.payment_failed"
)

// object returns the event's data object, or an empty result when absent.
func object(event stripe.Event) gjson.Result {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return gjson.Result{}
	}
	return gjson.ParseBytes(event.Data.Raw)
}

// logFields adds the listed object fields to a log event, skipping missing ones.
func logFields(e *zerolog.Event, obj gjson.Result, paths ...string) *zerolog.Event {
	for _, path := range paths {
		if v := obj.Get(path); v.Exists() {
			e = e.Str(path, v.String())
		}
	}
	return e
}

func handlePaymentSucceeded(_ context.Context, event stripe.Event) error {
	logFields(log.Info(), object(event), "id", "amount", "currency", "customer").Msg("payment succeeded")
	return nil
}

func handlePaymentFailed(_ context.Context, event stripe.Event) error {
	obj := object(event)
	logFields(log.Warn(), obj, "id", "amount", "customer", "last_payment_error.message").Msg("payment failed")
	return nil
}

func handleSubscriptionCreated(_ context.Context, event stripe.Event) error {
	logFields(log.Info(), object(event), "id", "customer", "status").Msg("subscription created")
	return nil
}

func handleSubscriptionUpdated(_ context.Context, event stripe.Event) error {
	logFields(log.Info(), object(event), "id", "customer", "status", "cancel_at_period_end").Msg("subscription updated")
	return nil
}

func handleSubscriptionDeleted(_ context.Context, event stripe.Event) error {
	logFields(log.Info(), object(event), "id", "customer").Msg("subscription cancelled")
	return nil
}

func handleInvoicePaymentSucceeded(_ context.Context, event stripe.Event) error {
	logFields(log.Info(), object(event), "id", "customer", "amount_paid", "subscription").Msg("invoice paid")
	return nil
}

func handleInvoicePaymentFailed(_ context.Context, event stripe.Event) error {
	logFields(log.Warn(), object(event), "id", "customer", "amount_due", "attempt_count").Msg("invoice payment failed")
	return nil
}
