// Package redis caches catalog resolutions so repeated wishes for the same
// gift phrase do not re-run the tiered search.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"santa-agent-service/internal/catalog"
	"santa-agent-service/internal/domain"
)

// ResolverCache stores resolved products as JSON under a per-phrase key and
// falls back to the wrapped source on a miss. Failures (unavailable catalog,
// true misses) are never cached. Concurrent resolutions of the same phrase
// collapse into one upstream call.
type ResolverCache struct {
	client *redis.Client
	source catalog.Source
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewResolverCache(client *redis.Client, source catalog.Source, ttl time.Duration) *ResolverCache {
	return &ResolverCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ResolverCache) Resolve(ctx context.Context, gift string) (domain.CatalogProduct, error) {
	key := c.key(gift)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var product domain.CatalogProduct
		if err := json.Unmarshal(raw, &product); err == nil {
			return product, nil
		}
		// Corrupt entry: drop it and resolve fresh.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var product domain.CatalogProduct
			if err := json.Unmarshal(raw, &product); err == nil {
				return product, nil
			}
		}

		product, err := c.source.Resolve(ctx, gift)
		if err != nil {
			return domain.CatalogProduct{}, err
		}

		if raw, err := json.Marshal(product); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return product, nil
	})
	if err != nil {
		return domain.CatalogProduct{}, err
	}
	return result.(domain.CatalogProduct), nil
}

func (c *ResolverCache) key(gift string) string {
	return "catalog:resolved:" + strings.ToLower(strings.TrimSpace(gift))
}

func (c *ResolverCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
