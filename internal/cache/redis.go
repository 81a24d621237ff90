package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/redis/go-redis/v9"
)

const routesKeyPrefix = "cache:routes:"

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	routesTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, routesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
		routesTTL:  routesTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.getJSON(ctx, flightsKey(), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(), flights, c.flightsTTL)
}

// GetRoutes returns nil, nil on a cache miss.
func (c *RedisCache) GetRoutes(ctx context.Context, origin, destination string, date time.Time) (*domain.RouteSearchResult, error) {
	var result domain.RouteSearchResult
	ok, err := c.getJSON(ctx, routesKey(origin, destination, date), &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetRoutes(ctx context.Context, origin, destination string, date time.Time, result *domain.RouteSearchResult) error {
	return c.setJSON(ctx, routesKey(origin, destination, date), result, c.routesTTL)
}

// InvalidateFlights drops the cached flight list and every cached route search.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	keys := []string{flightsKey()}
	iter := c.client.Scan(ctx, 0, routesKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey() string {
	return "cache:flights"
}

// routesKey identifies a search by the UTC instant its day window starts, so
// the same calendar date searched in different zones gets distinct entries.
func routesKey(origin, destination string, from time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", routesKeyPrefix, origin, destination, from.UTC().Format(time.RFC3339))
}
