package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessions records which bearer token is live per account. The bearer
// token itself stays stateless; this registry only exists so deactivation can
// terminate the caller's session before the token expires.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions constructs a RedisSessions registry.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// Start records the token id issued at login, expiring with the token.
func (s *RedisSessions) Start(ctx context.Context, email, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(email), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("accounts: start session: %w", err)
	}
	return nil
}

// End terminates the account's session.
func (s *RedisSessions) End(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("accounts: end session: %w", err)
	}
	return nil
}

// Active reports whether the given token id is the live session for the account.
func (s *RedisSessions) Active(ctx context.Context, email, tokenID string) (bool, error) {
	current, err := s.client.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("accounts: check session: %w", err)
	}
	return current == tokenID, nil
}

func (s *RedisSessions) key(email string) string {
	return "session:" + email
}

var _ SessionRegistry = (*RedisSessions)(nil)
