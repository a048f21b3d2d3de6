package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func TestDemoDataset_IsConsistent(t *testing.T) {
	data := DemoDataset(now)

	require.Len(t, data.Sales, 25)
	products := domain.NewProductIndex(data.Products)
	clients := domain.NewClientIndex(data.Clients)

	for _, s := range data.Sales {
		assert.NotEqual(t, domain.ClientNotFound, clients.Name(s.ClientID))
		assert.InDelta(t, pricing.ForSale(s).Total, s.Total, 1e-9)
		for _, item := range s.Items {
			_, ok := products.Get(item.ProductID)
			assert.True(t, ok)
		}
	}

	again := DemoDataset(now)
	assert.Equal(t, data.Products[0].ID, again.Products[0].ID)
	assert.Equal(t, data.Sales[10].ID, again.Sales[10].ID)
}

func TestMemory_FetchReturnsCopies(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory(DemoDataset(now), 0)

	sales, err := gw.FetchSales(ctx)
	require.NoError(t, err)
	sales[0].Items[0].Quantity = 999
	sales[0].Total = -1

	again, err := gw.FetchSales(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, 999, again[0].Items[0].Quantity)
	assert.NotEqual(t, -1.0, again[0].Total)
}

func TestMemory_CreateAndUpdateSale(t *testing.T) {
	ctx := context.Background()
	data := DemoDataset(now)
	gw := NewMemory(data, 0)
	client := data.Clients[0]
	before := client.PurchaseCount

	sale := &domain.Sale{ClientID: client.ID, Status: domain.SaleStatusPending, Total: 100}
	require.NoError(t, gw.CreateSale(ctx, sale))
	assert.NotEqual(t, uuid.Nil, sale.ID)

	clients, err := gw.FetchClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, domain.NewClientIndex(clients)[client.ID].PurchaseCount)

	sale.Status = domain.SaleStatusCompleted
	require.NoError(t, gw.UpdateSale(ctx, sale))

	sales, err := gw.FetchSales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 26)
	assert.Equal(t, domain.SaleStatusCompleted, sales[25].Status)

	err = gw.UpdateSale(ctx, &domain.Sale{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestMemory_LatencyHonoursContext(t *testing.T) {
	gw := NewMemory(DemoDataset(now), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.FetchProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// countingGateway records how often each read reaches it
type countingGateway struct {
	Gateway
	salesCalls   int
	clientsCalls int
	failSales    bool
}

func (c *countingGateway) FetchSales(ctx context.Context) ([]*domain.Sale, error) {
	c.salesCalls++
	if c.failSales {
		return nil, errors.New("boom")
	}
	return c.Gateway.FetchSales(ctx)
}

func (c *countingGateway) FetchClients(ctx context.Context) ([]*domain.Client, error) {
	c.clientsCalls++
	return c.Gateway.FetchClients(ctx)
}

func newCached(t *testing.T) (*Cached, *countingGateway, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingGateway{Gateway: NewMemory(DemoDataset(now), 0)}
	return NewCached(inner, client, time.Minute, zap.NewNop()), inner, mr
}

func TestCached_ServesRepeatReadsFromRedis(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := newCached(t)

	first, err := cached.FetchSales(ctx)
	require.NoError(t, err)
	second, err := cached.FetchSales(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.salesCalls)
	require.Len(t, second, len(first))
	assert.Equal(t, first[3].ID, second[3].ID)
	assert.Equal(t, first[3].Items, second[3].Items)
	assert.True(t, first[3].Date.Equal(second[3].Date))
}

func TestCached_WriteInvalidates(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := newCached(t)

	_, err := cached.FetchSales(ctx)
	require.NoError(t, err)
	_, err = cached.FetchClients(ctx)
	require.NoError(t, err)

	require.NoError(t, cached.CreateSale(ctx, &domain.Sale{ClientID: uuid.New(), Status: domain.SaleStatusPending}))

	sales, err := cached.FetchSales(ctx)
	require.NoError(t, err)
	_, err = cached.FetchClients(ctx)
	require.NoError(t, err)

	assert.Len(t, sales, 26)
	assert.Equal(t, 2, inner.salesCalls)
	assert.Equal(t, 2, inner.clientsCalls)
}

func TestCached_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	cached, inner, mr := newCached(t)
	mr.Close()

	sales, err := cached.FetchSales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 25)
	assert.Equal(t, 1, inner.salesCalls)
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := newCached(t)
	inner.failSales = true

	_, err := cached.FetchSales(ctx)
	assert.Error(t, err)

	inner.failSales = false
	sales, err := cached.FetchSales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 25)
}
