package service

import (
	"context"
	"testing"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShopService(t *testing.T) (*ShopService, *catalog.Store, *ledger.Ledger) {
	t.Helper()
	cat := catalog.NewStore()
	led := ledger.New()
	// no redis, kafka or database in unit tests; the service degrades to
	// pure in-memory operation
	return NewShopService(cat, led, nil, nil, nil), cat, led
}

func TestCreateItem(t *testing.T) {
	svc, cat, _ := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, cat.Len())

	_, err = svc.CreateItem(ctx, "maple SWORD", nil)
	assert.ErrorIs(t, err, catalog.ErrDuplicateItem)
	assert.Equal(t, 1, cat.Len())
}

func TestRenameItem(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sowrd", nil)
	require.NoError(t, err)

	renamed, err := svc.RenameItem(ctx, item.ID, "Maple Sword")
	require.NoError(t, err)
	assert.Equal(t, item.ID, renamed.ID)

	_, err = svc.RenameItem(ctx, "no-such-id", "Anything")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestAdjustStockRequiresKnownItem(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, "no-such-id", 5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)

	n, err := svc.AdjustStock(ctx, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = svc.AdjustStock(ctx, item.ID, -6)
	assert.ErrorIs(t, err, ledger.ErrNegativeStock)
}

func TestSetPriceAndItemPrice(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)

	price, err := svc.ItemPrice(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, price)

	require.NoError(t, svc.SetPrice(ctx, item.ID, 1500))

	price, err = svc.ItemPrice(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, int64(1500), *price)

	err = svc.SetPrice(ctx, item.ID, -1)
	assert.ErrorIs(t, err, ledger.ErrInvalidPrice)
}

func TestRecordSaleFlow(t *testing.T) {
	svc, _, led := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, item.ID, 2)
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, item.ID, 3, 1500, time.Now())
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
	rec, _ := led.Record(item.ID)
	assert.Equal(t, 2, rec.Stock)
	assert.Empty(t, led.Sales(item.ID, 0))

	entry, err := svc.RecordSale(ctx, item.ID, 2, 1500, time.Time{})
	require.NoError(t, err)
	assert.False(t, entry.SoldAt.IsZero(), "zero sale time defaults to now")

	rec, _ = led.Record(item.ID)
	assert.Equal(t, 0, rec.Stock)
}

func TestStaleItems(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	neverSold, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, neverSold.ID, 3)
	require.NoError(t, err)
	require.NoError(t, svc.SetPrice(ctx, neverSold.ID, 1800))

	sold, err := svc.CreateItem(ctx, "Red Whip", nil)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, sold.ID, 3)
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, sold.ID, 1, 900, time.Now())
	require.NoError(t, err)

	stale := svc.StaleItems(30 * 24 * time.Hour)
	require.Len(t, stale, 1)
	assert.Equal(t, neverSold.ID, stale[0].Item.ID)
	require.NotNil(t, stale[0].LastKnownPrice)
	assert.Equal(t, int64(1800), *stale[0].LastKnownPrice)
}

func TestStaleItemsFallsBackToReferencePrice(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	ref := int64(2500)
	item, err := svc.CreateItem(ctx, "Maple Shield", &ref)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, item.ID, 1)
	require.NoError(t, err)

	stale := svc.StaleItems(30 * 24 * time.Hour)
	require.Len(t, stale, 1)
	require.NotNil(t, stale[0].LastKnownPrice)
	assert.Equal(t, ref, *stale[0].LastKnownPrice)
}

func TestInventoryValueAndLedgerStats(t *testing.T) {
	svc, _, _ := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, item.ID, 4)
	require.NoError(t, err)
	require.NoError(t, svc.SetPrice(ctx, item.ID, 1000))
	_, err = svc.RecordSale(ctx, item.ID, 1, 1100, time.Now())
	require.NoError(t, err)

	v := svc.InventoryValue()
	assert.Equal(t, int64(3000), v.TotalValue)

	stats := svc.LedgerStats()
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, int64(1100), stats.TotalSalesValue)
}

func TestPurgeSales(t *testing.T) {
	svc, _, led := newShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Maple Sword", nil)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, item.ID, 5)
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	_, err = svc.RecordSale(ctx, item.ID, 1, 100, old)
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, item.ID, 1, 100, time.Now())
	require.NoError(t, err)

	removed := svc.PurgeSales(ctx, time.Now().Add(-24*time.Hour))
	assert.Equal(t, 1, removed)
	assert.Len(t, led.Sales(item.ID, 0), 1)
}
