package mapmatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/internal/infrastructure/clients/osrm"
)

const matchCacheTTL = 24 * time.Hour

// OSRMProvider implements MapMatchProvider against an OSRM instance, with
// matched routes cached by a fingerprint of the input trace. Traces are
// immutable once recorded, so a long TTL is safe.
type OSRMProvider struct {
	client *osrm.Client
	cache  providers.CacheProvider
}

// NewOSRMProvider creates a new OSRM map-match provider.
func NewOSRMProvider(client *osrm.Client, cache providers.CacheProvider) providers.MapMatchProvider {
	return &OSRMProvider{
		client: client,
		cache:  cache,
	}
}

// Match snaps the trace, serving repeated requests from cache.
func (p *OSRMProvider) Match(ctx context.Context, points []providers.TracePoint) (*providers.MatchedRoute, error) {
	cacheKey := "route:match:" + traceFingerprint(points)

	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var route providers.MatchedRoute
			if err := json.Unmarshal(cached, &route); err == nil {
				return &route, nil
			}
		}
	}

	route, err := p.client.Match(ctx, points)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if payload, err := json.Marshal(route); err == nil {
			if err := p.cache.Set(ctx, cacheKey, payload, matchCacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache matched route")
			}
		}
	}

	return route, nil
}

func traceFingerprint(points []providers.TracePoint) string {
	h := sha256.New()
	for _, p := range points {
		fmt.Fprintf(h, "%f:%f:%d;", p.Latitude, p.Longitude, p.Timestamp.Unix())
	}
	return hex.EncodeToString(h.Sum(nil))
}
