package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/internal/domain/repositories"
)

// CachedTrustAdapter wraps TrustAdapter with caching. The trust set is read
// once per analytics request, so a short TTL keeps toggles visible quickly
// while sparing the database a query per request.
type CachedTrustAdapter struct {
	adapter repositories.TrustRepository
	cache   providers.CacheProvider
}

// NewCachedTrustAdapter creates a new cached trust adapter
func NewCachedTrustAdapter(adapter repositories.TrustRepository, cache providers.CacheProvider) repositories.TrustRepository {
	return &CachedTrustAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

const trustSetTTL = 60 * time.Second

func trustSetCacheKey(userID string) string {
	return fmt.Sprintf("trust:set:%s", userID)
}

type cachedTrustEntry struct {
	Kind       entities.DeviceKind `json:"kind"`
	Identifier string              `json:"identifier"`
}

// GetSet returns the user's trust set, from cache when possible.
func (a *CachedTrustAdapter) GetSet(ctx context.Context, userID string) (entities.TrustSet, error) {
	cacheKey := trustSetCacheKey(userID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var entries []cachedTrustEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			set := entities.TrustSet{}
			for _, e := range entries {
				set[entities.TrustKey{Kind: e.Kind, Identifier: e.Identifier}] = struct{}{}
			}
			return set, nil
		}
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to unmarshal cached trust set")
	}

	set, err := a.adapter.GetSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]cachedTrustEntry, 0, len(set))
	for key := range set {
		entries = append(entries, cachedTrustEntry{Kind: key.Kind, Identifier: key.Identifier})
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(entries); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, trustSetTTL); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache trust set")
			}
		}
	}()

	return set, nil
}

// List passes through; the listing endpoint is rare enough not to cache.
func (a *CachedTrustAdapter) List(ctx context.Context, userID string) ([]*entities.TrustedDevice, error) {
	return a.adapter.List(ctx, userID)
}

// Set writes through and invalidates the cached snapshot.
func (a *CachedTrustAdapter) Set(ctx context.Context, userID string, kind entities.DeviceKind, identifier string, trusted bool) error {
	if err := a.adapter.Set(ctx, userID, kind, identifier, trusted); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, trustSetCacheKey(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate trust set cache")
	}

	return nil
}
