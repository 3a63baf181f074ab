package errors

import (
	"errors"
	"fmt"
)

// Common error types for the login, token and webhook flows.
// Gateway failures use gateway.APIError instead.
var (
	// Token errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnsupportedAlgo  = errors.New("unsupported signing algorithm")
	ErrMissingSecretKey = errors.New("missing signing secret")

	// OAuth login errors
	ErrInvalidState     = errors.New("invalid state parameter")
	ErrMissingCode      = errors.New("authorization code not found")
	ErrIdentityExchange = errors.New("identity provider exchange failed")
	ErrIncompleteClaims = errors.New("identity provider returned incomplete claims")

	// Webhook errors
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
	ErrMissingSignature     = errors.New("missing signature")
	ErrInvalidPayload       = errors.New("invalid JSON payload")
	ErrInvalidSignature     = errors.New("invalid signature")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
