package geocode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tonyadjei/devcamper-api/internal/cache"
	"github.com/tonyadjei/devcamper-api/internal/metrics"
)

const cacheTTL = 24 * time.Hour

// CachedGeocoder memoizes lookups in the cache store. Cache failures fall
// through to the upstream geocoder.
type CachedGeocoder struct {
	next  Geocoder
	store cache.Cache
}

func NewCached(next Geocoder, store cache.Cache) *CachedGeocoder {
	return &CachedGeocoder{next: next, store: store}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	key := "geocode:" + address

	if raw, ok, err := g.store.Get(ctx, key); err == nil && ok {
		var loc Location
		if err := json.Unmarshal(raw, &loc); err == nil {
			metrics.GeocodeCacheHits.Inc()
			return loc, nil
		}
	}

	loc, err := g.next.Geocode(ctx, address)
	if err != nil {
		return Location{}, err
	}

	if raw, err := json.Marshal(loc); err == nil {
		_ = g.store.Set(ctx, key, raw, cacheTTL)
	}
	return loc, nil
}
