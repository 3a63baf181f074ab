// Package provisioning keeps a gateway consumer and its API keys in step with
// the users who sign in.
//
// Consumers are addressed by email: username is the email and custom_id is
// DeriveIdentifier(email).
package provisioning

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-gateway-auth/gateway"
	"github.com/jrsteele09/go-gateway-auth/identity"
	"github.com/rs/zerolog/log"
)

// Gateway is the part of the gateway admin client the provisioner needs.
type Gateway interface {
	FindConsumer(ctx context.Context, usernameOrID string) (*gateway.Consumer, bool, error)
	CreateConsumer(ctx context.Context, req gateway.CreateConsumerRequest) (*gateway.Consumer, error)
	DeleteConsumer(ctx context.Context, usernameOrID string) error
	CreateConsumerKey(ctx context.Context, usernameOrID, key string) (*gateway.APIKey, error)
	GetConsumerKeys(ctx context.Context, usernameOrID string) ([]gateway.APIKey, error)
	DeleteConsumerKey(ctx context.Context, usernameOrID, keyID string) error
}

var _ Gateway = (*gateway.Client)(nil)

// Outcome is the result of EnsureConsumer. It is only used for logging and display.
type Outcome struct {
	Success    bool   `json:"success"`
	ConsumerID string `json:"consumer_id,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
	Error      string `json:"error,omitempty"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

type Provisioner struct {
	gateway Gateway
	tags    []string
}

func NewProvisioner(gw Gateway, tags []string) *Provisioner {
	return &Provisioner{
		gateway: gw,
		tags:    tags,
	}
}

// ConsumerRequest returns the fields used to create the consumer for email.
func (p *Provisioner) ConsumerRequest(email string) gateway.CreateConsumerRequest {
	return gateway.CreateConsumerRequest{
		Username: email,
		CustomID: DeriveIdentifier(email),
		Tags:     append([]string(nil), p.tags...),
	}
}

// EnsureConsumer makes sure a consumer exists for the user. An existing
// consumer is left alone. A new consumer also gets a generated API key, on a
// best-effort basis. Failures are logged and reported in the Outcome; the
// method never returns an error or panics.
func (p *Provisioner) EnsureConsumer(ctx context.Context, user identity.Claims) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("email", user.Email).Interface("panic", r).Msg("consumer provisioning panicked")
			outcome = Outcome{Error: fmt.Sprintf("unexpected error: %v", r)}
		}
	}()

	if user.Email == "" {
		log.Warn().Str("user_id", user.SubjectID).Msg("cannot provision consumer without an email")
		return Outcome{Error: "identity has no email"}
	}

	consumer, found, err := p.gateway.FindConsumer(ctx, user.Email)
	if err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("consumer lookup failed, continuing without gateway access")
		return Outcome{Error: err.Error()}
	}
	if found {
		log.Info().Str("email", user.Email).Str("consumer_id", consumer.ID).Msg("gateway consumer present")
		return Outcome{Success: true, ConsumerID: consumer.ID}
	}

	log.Info().Str("email", user.Email).Msg("gateway consumer absent, creating")
	created, err := p.gateway.CreateConsumer(ctx, p.ConsumerRequest(user.Email))
	if err != nil {
		if gateway.IsConflict(err) {
			return p.resolveDuplicate(ctx, user.Email)
		}
		log.Warn().Err(err).Str("email", user.Email).Msg("consumer creation failed, continuing without gateway access")
		return Outcome{Error: err.Error()}
	}

	outcome = Outcome{Success: true, ConsumerID: created.ID}
	log.Info().Str("email", user.Email).Str("consumer_id", created.ID).Msg("gateway consumer created")

	key, err := p.gateway.CreateConsumerKey(ctx, created.ID, "")
	if err != nil {
		log.Warn().Err(err).Str("consumer_id", created.ID).Msg("api key creation failed, consumer kept")
		return outcome
	}
	outcome.APIKey = key.Key
	log.Info().Str("consumer_id", created.ID).Str("key", gateway.MaskKey(key.Key)).Msg("api key created")
	return outcome
}

// resolveDuplicate handles a 409 on create. When the consumer still cannot be
// found by email the conflict came from another user's custom_id.
func (p *Provisioner) resolveDuplicate(ctx context.Context, email string) Outcome {
	consumer, found, err := p.gateway.FindConsumer(ctx, email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("consumer lookup after conflict failed")
		return Outcome{Duplicate: true, Error: err.Error()}
	}
	if !found {
		customID := DeriveIdentifier(email)
		log.Warn().Str("email", email).Str("custom_id", customID).Msg("custom_id already taken by another consumer")
		return Outcome{Duplicate: true, Error: "custom_id collision: " + customID}
	}
	log.Info().Str("email", email).Str("consumer_id", consumer.ID).Msg("gateway consumer already provisioned")
	return Outcome{Success: true, Duplicate: true, ConsumerID: consumer.ID}
}
