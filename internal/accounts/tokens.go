package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trylog/trylog/internal/shared"
)

const rawTokenBytes = 32

// TokenVault stores single-use security tokens in Redis. A token is keyed by
// purpose, account id, and the SHA-256 digest of its raw bytes, so a wrong
// token never matches and a purpose mismatch never validates. Consumption
// uses GETDEL, which guarantees exactly one of two concurrent consumers
// succeeds.
type TokenVault struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenVault constructs a TokenVault with the configured token lifetime.
func NewTokenVault(client *redis.Client, ttl time.Duration) *TokenVault {
	return &TokenVault{client: client, ttl: ttl}
}

// Issue mints a fresh token bound to the account and purpose and returns the
// raw bytes. Only the digest is stored.
func (v *TokenVault) Issue(ctx context.Context, purpose TokenPurpose, accountID int64) ([]byte, error) {
	raw := make([]byte, rawTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("accounts: token entropy: %w", err)
	}
	key := v.key(purpose, accountID, raw)
	if err := v.client.Set(ctx, key, "1", v.ttl).Err(); err != nil {
		return nil, fmt.Errorf("accounts: store token: %w", err)
	}
	return raw, nil
}

// Consume validates a token against the given purpose and account and burns
// it. A second attempt for the same token, and any attempt against the wrong
// purpose, reports shared.ErrTokenInvalid.
func (v *TokenVault) Consume(ctx context.Context, purpose TokenPurpose, accountID int64, raw []byte) error {
	key := v.key(purpose, accountID, raw)
	if err := v.client.GetDel(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrTokenInvalid
		}
		return fmt.Errorf("accounts: consume token: %w", err)
	}
	return nil
}

func (v *TokenVault) key(purpose TokenPurpose, accountID int64, raw []byte) string {
	digest := sha256.Sum256(raw)
	return fmt.Sprintf("sectoken:%s:%d:%s", purpose, accountID, hex.EncodeToString(digest[:]))
}
