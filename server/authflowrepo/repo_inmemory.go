package authflowrepo

import (
	"context"
	"errors"
	"sync"
	"time"
)

var _ Repo = (*InMemoryRepo)(nil)

type entry struct {
	state     AuthFlowState
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// States live only as long as the process.
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]entry
	now    func() time.Time
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]entry),
		now:    time.Now,
	}
}

// Save stores a copy of the state. Expired states are purged on every save.
func (r *InMemoryRepo) Save(_ context.Context, state string, authState *AuthFlowState, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, e := range r.states {
		if !now.Before(e.expiresAt) {
			delete(r.states, k)
		}
	}
	r.states[state] = entry{state: *authState, expiresAt: now.Add(ttl)}
	return nil
}

// Consume returns the state and removes it.
func (r *InMemoryRepo) Consume(_ context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	delete(r.states, state)

	if !r.now().Before(e.expiresAt) {
		return nil, ErrStateNotFound
	}
	authState := e.state
	return &authState, nil
}

// Len returns the number of stored states, expired ones included.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
