package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationStore is a Redis denylist of token ids. Entries expire together
// with the token they reject.
type RevocationStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRevocationStore wraps client.
func NewRevocationStore(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client, now: time.Now}
}

// Revoke rejects tokenID until until. Tokens that already expired are skipped.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	// exp has second precision while Redis TTLs are rounded down.
	ttl += time.Second
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether tokenID is on the denylist.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
