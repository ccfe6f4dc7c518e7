package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = errors.New("api key not found")

const (
	cacheKeyPrefix = "smartrouter:key:"
	cacheTTL       = 5 * time.Minute
)

// TenantStore resolves an API key to its tenant metadata.
type TenantStore interface {
	Lookup(ctx context.Context, keyHash string) (*KeyMetadata, error)
}

// CachedTenantStore looks up keys in Postgres with a Redis read-through
// cache. Cache misses fall back to the database; Redis outages degrade to
// database-only lookups.
type CachedTenantStore struct {
	db     *pgxpool.Pool
	cache  *redis.Client
	logger *slog.Logger
}

func NewCachedTenantStore(db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) *CachedTenantStore {
	return &CachedTenantStore{db: db, cache: cache, logger: logger}
}

func (s *CachedTenantStore) Lookup(ctx context.Context, keyHash string) (*KeyMetadata, error) {
	cacheKey := cacheKeyPrefix + keyHash

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var meta KeyMetadata
			if jsonErr := json.Unmarshal([]byte(cached), &meta); jsonErr == nil {
				return &meta, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis lookup failed, falling back to database", "error", err)
		}
	}

	meta, err := s.lookupDB(ctx, keyHash)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, jsonErr := json.Marshal(meta); jsonErr == nil {
			if setErr := s.cache.Set(ctx, cacheKey, data, cacheTTL).Err(); setErr != nil {
				s.logger.Warn("failed to cache key metadata", "error", setErr)
			}
		}
	}

	return meta, nil
}

func (s *CachedTenantStore) lookupDB(ctx context.Context, keyHash string) (*KeyMetadata, error) {
	query := `
		SELECT k.id, k.tenant_id, t.name, k.name, t.allowed_models,
		       k.rpm_limit, k.daily_spend_limit_cents, k.expires_at
		FROM api_keys k
		JOIN tenants t ON t.id = k.tenant_id
		WHERE k.key_hash = $1 AND k.active = true AND t.active = true
	`

	var meta KeyMetadata
	var expiresAt *time.Time
	err := s.db.QueryRow(ctx, query, keyHash).Scan(
		&meta.ID, &meta.TenantID, &meta.TenantName, &meta.Name,
		&meta.AllowedModels, &meta.RPMLimit, &meta.DailySpendLimitCents,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	if expiresAt != nil {
		meta.ExpiresAt = *expiresAt
		if time.Now().After(meta.ExpiresAt) {
			return nil, ErrKeyNotFound
		}
	}

	// Best-effort usage timestamp; don't block the request path on it.
	go func() {
		updateCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := s.db.Exec(updateCtx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, meta.ID)
		if err != nil {
			s.logger.Debug("failed to update last_used_at", "key_id", meta.ID, "error", err)
		}
	}()

	return &meta, nil
}
