// file: repository/revocation_cache.go

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// This abstraction allows us to decouple the revocation cache from a concrete
// Redis implementation, enabling easier testing and future flexibility.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const revokedKeyPrefix = "revoked:"

// CachedRevocationRepository puts a Redis read-through cache in front of a
// revocation store. Only positive lookups are cached: an entry that is absent
// is always re-checked against the underlying store, so a fresh revocation is
// never hidden by a stale cache miss.
type CachedRevocationRepository struct {
	next  IRevocationRepository
	cache ICacheClient
	ttl   time.Duration
}

// NewCachedRevocationRepository wraps next with a cache whose entries live for ttl.
func NewCachedRevocationRepository(next IRevocationRepository, cache ICacheClient, ttl time.Duration) *CachedRevocationRepository {
	return &CachedRevocationRepository{next: next, cache: cache, ttl: ttl}
}

func revokedKey(tokenID string) string { return revokedKeyPrefix + tokenID }

// Add writes through to the store, then primes the cache.
func (r *CachedRevocationRepository) Add(ctx context.Context, token *model.RevokedToken) error {
	if err := r.next.Add(ctx, token); err != nil {
		return err
	}
	r.store(ctx, token)
	return nil
}

// Get serves from Redis when possible. Cache errors fall back to the store.
func (r *CachedRevocationRepository) Get(ctx context.Context, tokenID string) (*model.RevokedToken, bool, error) {
	cached, err := r.cache.Get(ctx, revokedKey(tokenID)).Result()
	switch {
	case err == nil:
		var token model.RevokedToken
		if jsonErr := json.Unmarshal([]byte(cached), &token); jsonErr == nil {
			return &token, true, nil
		}
		logger.Log.WithField("token_id", tokenID).Warn("Discarding undecodable revocation cache entry")
	case errors.Is(err, redis.Nil):
	default:
		logger.Log.WithError(err).WithField("token_id", tokenID).Warn("Revocation cache lookup failed, falling back to database")
	}

	token, found, err := r.next.Get(ctx, tokenID)
	if err != nil || !found {
		return token, found, err
	}
	r.store(ctx, token)
	return token, true, nil
}

// Delete removes the entry from the store and evicts it from the cache.
func (r *CachedRevocationRepository) Delete(ctx context.Context, tokenID string) error {
	if err := r.next.Delete(ctx, tokenID); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, revokedKey(tokenID)).Err(); err != nil {
		logger.Log.WithError(err).WithField("token_id", tokenID).Warn("Failed to evict revocation cache entry")
	}
	return nil
}

func (r *CachedRevocationRepository) store(ctx context.Context, token *model.RevokedToken) {
	data, err := json.Marshal(token)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, revokedKey(token.TokenID), data, r.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("token_id", token.TokenID).Warn("Failed to cache revocation entry")
	}
}
