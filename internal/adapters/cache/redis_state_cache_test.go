package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

func testCache(t *testing.T) (*RedisStateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStateCache(client, time.Hour, hclog.NewNullLogger()), mr
}

func TestWarehouseRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	w := &domain.Warehouse{
		ID: "wh_1", Name: "Central", Location: "Des Moines, IA", Capacity: 18000,
		Items: map[string]*domain.InventoryItem{
			"bolts": {ID: "bolts", Name: "Bolts", Quantity: 120, MinThreshold: 50, Unit: "box"},
		},
	}
	require.NoError(t, c.StoreWarehouse(ctx, w))

	loaded, err := c.LoadWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, w.ID, loaded[0].ID)
	assert.Equal(t, w.Capacity, loaded[0].Capacity)
	require.Contains(t, loaded[0].Items, "bolts")
	assert.Equal(t, 120, loaded[0].Items["bolts"].Quantity)
}

func TestShipmentRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	eta := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	s := &domain.Shipment{
		ID: "shp_1", Origin: "wh_1", Destination: "north_hub_1",
		Status: domain.StatusInTransit, Priority: 8, RouteID: "r1",
		EstimatedArrival: eta,
	}
	require.NoError(t, c.StoreShipment(ctx, s))

	loaded, err := c.LoadShipments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, domain.StatusInTransit, loaded[0].Status)
	assert.True(t, loaded[0].EstimatedArrival.Equal(eta))
}

func TestEntriesExpire(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreWarehouse(ctx, &domain.Warehouse{ID: "wh_1"}))
	mr.FastForward(2 * time.Hour)

	loaded, err := c.LoadWarehouses(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCorruptEntrySkipped(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreShipment(ctx, &domain.Shipment{ID: "shp_good"}))
	mr.Set(shipmentKeyPrefix+"bad", "{not json")

	loaded, err := c.LoadShipments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "shp_good", loaded[0].ID)
}

func TestStoresAreSegregatedByPrefix(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreWarehouse(ctx, &domain.Warehouse{ID: "x"}))
	require.NoError(t, c.StoreShipment(ctx, &domain.Shipment{ID: "x"}))
	require.NoError(t, c.StoreRouteConditions(ctx, &domain.RouteConditions{RouteID: "x"}))

	warehouses, err := c.LoadWarehouses(ctx)
	require.NoError(t, err)
	shipments, err := c.LoadShipments(ctx)
	require.NoError(t, err)
	assert.Len(t, warehouses, 1)
	assert.Len(t, shipments, 1)
}
