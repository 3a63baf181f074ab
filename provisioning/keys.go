package provisioning

import (
	"context"

	"github.com/jrsteele09/go-gateway-auth/gateway"
	"github.com/rs/zerolog/log"
)

// Key is an API key as shown to its owner.
type Key struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	ConsumerID string `json:"consumer_id,omitempty"`
}

// ConsumerInfo describes a user's gateway access.
type ConsumerInfo struct {
	Provisioned bool              `json:"provisioned"`
	Consumer    *gateway.Consumer `json:"consumer,omitempty"`
	Keys        []Key             `json:"keys"`
}

func toKey(k gateway.APIKey) Key {
	return Key{
		ID:         k.ID,
		Key:        k.Key,
		CreatedAt:  k.CreatedAt,
		ConsumerID: k.ConsumerID(),
	}
}

// ListKeys returns the API keys of the user's consumer.
func (p *Provisioner) ListKeys(ctx context.Context, email string) ([]Key, error) {
	apiKeys, err := p.gateway.GetConsumerKeys(ctx, email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("listing api keys failed")
		return nil, err
	}
	keys := make([]Key, 0, len(apiKeys))
	for _, k := range apiKeys {
		keys = append(keys, toKey(k))
	}
	return keys, nil
}

// CreateKey adds an API key to the user's consumer. An empty customKey lets the gateway generate one.
func (p *Provisioner) CreateKey(ctx context.Context, email, customKey string) (Key, error) {
	apiKey, err := p.gateway.CreateConsumerKey(ctx, email, customKey)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("creating api key failed")
		return Key{}, err
	}
	log.Info().Str("email", email).Str("key_id", apiKey.ID).Msg("api key created")
	return toKey(*apiKey), nil
}

func (p *Provisioner) RevokeKey(ctx context.Context, email, keyID string) error {
	if err := p.gateway.DeleteConsumerKey(ctx, email, keyID); err != nil {
		log.Warn().Err(err).Str("email", email).Str("key_id", keyID).Msg("revoking api key failed")
		return err
	}
	log.Info().Str("email", email).Str("key_id", keyID).Msg("api key revoked")
	return nil
}

// ConsumerInfo returns the user's consumer and keys. A missing consumer is
// reported as not provisioned rather than as an error.
func (p *Provisioner) ConsumerInfo(ctx context.Context, email string) (ConsumerInfo, error) {
	consumer, found, err := p.gateway.FindConsumer(ctx, email)
	if err != nil {
		return ConsumerInfo{}, err
	}
	if !found {
		return ConsumerInfo{Keys: []Key{}}, nil
	}
	keys, err := p.ListKeys(ctx, email)
	if err != nil {
		return ConsumerInfo{}, err
	}
	return ConsumerInfo{
		Provisioned: true,
		Consumer:    consumer,
		Keys:        keys,
	}, nil
}

// Deprovision deletes the user's consumer along with its keys.
func (p *Provisioner) Deprovision(ctx context.Context, email string) error {
	if err := p.gateway.DeleteConsumer(ctx, email); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("deprovisioning failed")
		return err
	}
	log.Info().Str("email", email).Msg("gateway consumer deleted")
	return nil
}
