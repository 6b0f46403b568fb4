package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked session ids until the moment the session would
// have expired on its own, after which Redis drops the key.
// Key format: revoked:<token_id>
type Denylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewDenylist creates a Denylist wrapping the given Redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client, now: time.Now}
}

// IsRevoked reports whether the session id has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

// Revoke denies tokenID until the given instant. Sessions that have already
// expired need no entry.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (d *Denylist) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

func (d *Denylist) key(tokenID string) string {
	return "revoked:" + tokenID
}
