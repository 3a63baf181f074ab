package authflowrepo

import (
	"context"
	"errors"
	"time"
)

// ErrStateNotFound is returned for unknown, expired or already consumed states.
var ErrStateNotFound = errors.New("state not found")

// AuthFlowState is what the login handler remembers about a pending
// authorization request until the provider calls back.
type AuthFlowState struct {
	ReturnURL string    `json:"return_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo stores pending OAuth states. A state can be consumed once.
type Repo interface {
	Save(ctx context.Context, state string, authState *AuthFlowState, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*AuthFlowState, error)
}
