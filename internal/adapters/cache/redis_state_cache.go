package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

const (
	warehouseKeyPrefix = "state:warehouse:"
	shipmentKeyPrefix  = "state:shipment:"
	routeKeyPrefix     = "state:route:"

	scanBatch = 100
)

// RedisStateCache keeps the latest normalized snapshot of each entity in
// redis so a restarted agent does not start blind. Entries expire on
// their own; a stale snapshot is worse than none.
type RedisStateCache struct {
	client *redis.Client
	ttl    time.Duration
	log    hclog.Logger
}

func NewRedisStateCache(client *redis.Client, ttl time.Duration, log hclog.Logger) *RedisStateCache {
	return &RedisStateCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("state-cache"),
	}
}

// Dial connects to redis and verifies the connection with a ping.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisStateCache) StoreWarehouse(ctx context.Context, w *domain.Warehouse) error {
	return c.store(ctx, warehouseKeyPrefix+w.ID, w)
}

func (c *RedisStateCache) StoreShipment(ctx context.Context, s *domain.Shipment) error {
	return c.store(ctx, shipmentKeyPrefix+s.ID, s)
}

func (c *RedisStateCache) StoreRouteConditions(ctx context.Context, rc *domain.RouteConditions) error {
	return c.store(ctx, routeKeyPrefix+rc.RouteID, rc)
}

func (c *RedisStateCache) store(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache %s: encode: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache %s: set: %w", key, err)
	}
	return nil
}

// LoadWarehouses returns every cached warehouse snapshot. Entries that
// fail to decode are skipped with a warning; one corrupt key must not
// block the warm start.
func (c *RedisStateCache) LoadWarehouses(ctx context.Context) ([]*domain.Warehouse, error) {
	var out []*domain.Warehouse
	err := c.scan(ctx, warehouseKeyPrefix+"*", func(key string, payload []byte) {
		var w domain.Warehouse
		if err := json.Unmarshal(payload, &w); err != nil {
			c.log.Warn("skipping undecodable cache entry", "key", key, "error", err)
			return
		}
		out = append(out, &w)
	})
	if err != nil {
		return nil, fmt.Errorf("load warehouses: %w", err)
	}
	return out, nil
}

func (c *RedisStateCache) LoadShipments(ctx context.Context) ([]*domain.Shipment, error) {
	var out []*domain.Shipment
	err := c.scan(ctx, shipmentKeyPrefix+"*", func(key string, payload []byte) {
		var s domain.Shipment
		if err := json.Unmarshal(payload, &s); err != nil {
			c.log.Warn("skipping undecodable cache entry", "key", key, "error", err)
			return
		}
		out = append(out, &s)
	})
	if err != nil {
		return nil, fmt.Errorf("load shipments: %w", err)
	}
	return out, nil
}

func (c *RedisStateCache) scan(ctx context.Context, pattern string, visit func(key string, payload []byte)) error {
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		visit(key, payload)
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	return nil
}
