package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 3 * time.Hour

// CachedProvider wraps a WeatherProvider with a Redis read-through cache.
// Redis failures are logged and the wrapped provider is called directly.
type CachedProvider struct {
	next ports.WeatherProvider
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedProvider(next ports.WeatherProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{next: next, rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:%.3f,%.3f", lat, lon)
}

func (c *CachedProvider) Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	key := cacheKey(lat, lon)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var f domain.Forecast
		if err := json.Unmarshal(raw, &f); err == nil {
			return f, nil
		}
		log.Printf("weather cache: discarding undecodable entry key=%s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("weather cache read failed: key=%s err=%v", key, err)
	}

	f, err := c.next.Forecast(ctx, lat, lon)
	if err != nil {
		return domain.Forecast{}, err
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return f, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("weather cache write failed: key=%s err=%v", key, err)
	}

	return f, nil
}
