package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/metrics"
)

const DefaultCacheTTL = 10 * time.Minute

// kv is the slice of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedFinder memoizes nearest place lookups in Redis, keyed by place type
// and the position rounded to roughly a hundred meters. Misses are not cached.
//
// A cell is shared by nearby requesters, so a hit rebuilds the directions
// link from the requesting position. Walking distance and duration are only
// kept when the requester stands exactly where they were measured.
type CachedFinder struct {
	next   PlaceFinder
	rdb    kv
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFinder(next PlaceFinder, rdb kv, ttl time.Duration, logger *slog.Logger) *CachedFinder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFinder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// cacheEntry is the stored place with the origin its walk texts and
// directions link were computed from.
type cacheEntry struct {
	Place  domain.Place      `json:"place"`
	Origin domain.Coordinate `json:"origin"`
}

func (e cacheEntry) placeFor(at domain.Coordinate) *domain.Place {
	p := e.Place
	if at != e.Origin {
		p.URL = directionsURL(formatLatLng(at), p.Location)
		p.DistanceText = notAvailable
		p.DurationText = notAvailable
	}
	return &p
}

func CacheKey(placeType string, at domain.Coordinate) string {
	return fmt.Sprintf("places:%s:%.3f,%.3f", placeType, at.Lat, at.Lon)
}

func (c *CachedFinder) FindNearest(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error) {
	key := CacheKey(placeType, at)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var e cacheEntry
		if uerr := json.Unmarshal(raw, &e); uerr == nil {
			metrics.PlacesCacheTotal.WithLabelValues("hit").Inc()
			return e.placeFor(at), nil
		}
		c.logger.Warn("discarding corrupt cached place", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		metrics.PlacesCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("places cache read failed", "key", key, "err", err)
	}
	metrics.PlacesCacheTotal.WithLabelValues("miss").Inc()

	p, err := c.next.FindNearest(ctx, placeType, at)
	if err != nil {
		return nil, err
	}

	if b, merr := json.Marshal(cacheEntry{Place: *p, Origin: at}); merr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("places cache write failed", "key", key, "err", serr)
		}
	}
	return p, nil
}
