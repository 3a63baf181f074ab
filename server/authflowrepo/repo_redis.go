package authflowrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Repo = (*RedisRepo)(nil)

// RedisRepo keeps states in Redis so several instances can share a login flow.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisRepo) key(state string) string {
	return r.prefix + state
}

func (r *RedisRepo) Save(ctx context.Context, state string, authState *AuthFlowState, ttl time.Duration) error {
	if state == "" || authState == nil {
		return errors.New("authflow: missing state")
	}
	if ttl <= 0 {
		return errors.New("authflow: ttl must be positive")
	}

	data, err := json.Marshal(authState)
	if err != nil {
		return fmt.Errorf("authflow: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(state), data, ttl).Err()
}

// Consume reads and deletes the state atomically with GETDEL.
func (r *RedisRepo) Consume(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}

	val, err := r.client.GetDel(ctx, r.key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var authState AuthFlowState
	if err := json.Unmarshal(val, &authState); err != nil {
		return nil, fmt.Errorf("authflow: failed to unmarshal: %w", err)
	}
	return &authState, nil
}
