package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// RevokedTokenRepository keeps logged-out token ids in Redis until the token
// would have expired anyway. A nil client turns every call into a no-op.
type RevokedTokenRepository struct {
	rdb *redis.Client
}

func NewRevokedTokenRepository(rdb *redis.Client) *RevokedTokenRepository {
	return &RevokedTokenRepository{rdb: rdb}
}

func (r *RevokedTokenRepository) Enabled() bool {
	return r != nil && r.rdb != nil
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error {
	if !r.Enabled() {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedTokenPrefix+tokenId, 1, ttl).Err()
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	err := r.rdb.Get(ctx, revokedTokenPrefix+tokenId).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RevokedTokenRepository) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.rdb.Close()
}
