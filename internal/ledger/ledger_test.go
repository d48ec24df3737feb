package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateRecord(t *testing.T) {
	l := New()

	rec := l.GetOrCreateRecord("item-1")
	assert.Equal(t, "item-1", rec.ItemID)
	assert.Equal(t, 0, rec.Stock)
	assert.Nil(t, rec.AskingPrice)

	// second call returns the same record, not a fresh one
	_, err := l.AdjustStock("item-1", 5)
	require.NoError(t, err)
	rec = l.GetOrCreateRecord("item-1")
	assert.Equal(t, 5, rec.Stock)
}

func TestAdjustStock(t *testing.T) {
	l := New()

	n, err := l.AdjustStock("item-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = l.AdjustStock("item-1", -4)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// rejected wholesale, stock unchanged
	n, err = l.AdjustStock("item-1", -7)
	assert.ErrorIs(t, err, ErrNegativeStock)
	assert.Equal(t, 6, n)

	rec, ok := l.Record("item-1")
	require.True(t, ok)
	assert.Equal(t, 6, rec.Stock)
}

func TestSetPrice(t *testing.T) {
	l := New()

	old, err := l.SetPrice("item-1", 1500)
	require.NoError(t, err)
	assert.Nil(t, old)

	old, err = l.SetPrice("item-1", 1200)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, int64(1500), *old)

	_, err = l.SetPrice("item-1", -1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	rec, _ := l.Record("item-1")
	require.NotNil(t, rec.AskingPrice)
	assert.Equal(t, int64(1200), *rec.AskingPrice)
}

func TestRecordSale(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 5)
	require.NoError(t, err)

	soldAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry, err := l.RecordSale("item-1", 2, 1300, soldAt)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Quantity)
	assert.Equal(t, int64(1300), entry.UnitPrice)

	rec, _ := l.Record("item-1")
	assert.Equal(t, 3, rec.Stock)
	require.NotNil(t, rec.LastSoldAt)
	assert.True(t, rec.LastSoldAt.Equal(soldAt))
	require.NotNil(t, rec.LastSoldPrice)
	assert.Equal(t, int64(1300), *rec.LastSoldPrice)

	sales := l.Sales("item-1", 0)
	require.Len(t, sales, 1)
	assert.Equal(t, entry, sales[0])
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 2)
	require.NoError(t, err)

	_, err = l.RecordSale("item-1", 3, 1000, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientStock)

	rec, _ := l.Record("item-1")
	assert.Equal(t, 2, rec.Stock)
	assert.Nil(t, rec.LastSoldAt)
	assert.Empty(t, l.Sales("item-1", 0))
}

func TestRecordSaleInvalidArgs(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 5)
	require.NoError(t, err)

	_, err = l.RecordSale("item-1", 0, 1000, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.RecordSale("item-1", 1, -5, time.Now())
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestZeroStockRecordRetained(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 1)
	require.NoError(t, err)
	_, err = l.RecordSale("item-1", 1, 900, time.Now())
	require.NoError(t, err)

	rec, ok := l.Record("item-1")
	require.True(t, ok, "depleted record must survive")
	assert.Equal(t, 0, rec.Stock)
	assert.NotNil(t, rec.LastSoldAt)
}

func TestSalesNewestFirstAndLimit(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 10)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := l.RecordSale("item-1", 1, int64(100+i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	sales := l.Sales("item-1", 2)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(103), sales[0].UnitPrice)
	assert.Equal(t, int64(102), sales[1].UnitPrice)
}

func TestPurgeSales(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 10)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := l.RecordSale("item-1", 1, 100, base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	removed := l.PurgeSales(base.Add(2 * 24 * time.Hour))
	assert.Equal(t, 2, removed)
	assert.Len(t, l.Sales("", 0), 2)
}

func TestStaleRecords(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("never-sold", 3)
	require.NoError(t, err)
	_, err = l.AdjustStock("sold-recently", 3)
	require.NoError(t, err)
	_, err = l.AdjustStock("sold-long-ago", 3)
	require.NoError(t, err)
	_, err = l.AdjustStock("out-of-stock", 0)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = l.RecordSale("sold-recently", 1, 100, now)
	require.NoError(t, err)
	_, err = l.RecordSale("sold-long-ago", 1, 100, now.Add(-60*24*time.Hour))
	require.NoError(t, err)

	stale := l.StaleRecords(now.Add(-30 * 24 * time.Hour))
	ids := make([]string, 0, len(stale))
	for _, rec := range stale {
		ids = append(ids, rec.ItemID)
	}
	assert.ElementsMatch(t, []string{"never-sold", "sold-long-ago"}, ids)
}

func TestInventoryValueAndStats(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("a", 2)
	require.NoError(t, err)
	_, err = l.SetPrice("a", 500)
	require.NoError(t, err)
	_, err = l.AdjustStock("b", 4)
	require.NoError(t, err)
	l.GetOrCreateRecord("c")

	v := l.InventoryValue()
	assert.Equal(t, 3, v.TotalItems)
	assert.Equal(t, 2, v.ItemsWithStock)
	assert.Equal(t, int64(1000), v.TotalValue)

	_, err = l.RecordSale("a", 2, 450, time.Now())
	require.NoError(t, err)

	s := l.Stats()
	assert.Equal(t, 1, s.TotalEntries)
	assert.Equal(t, 2, s.TotalQuantity)
	assert.Equal(t, int64(900), s.TotalSalesValue)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	l := New()
	_, err := l.AdjustStock("item-1", 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	succeeded := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.RecordSale("item-1", 1, 100, time.Now())
			succeeded[i] = err == nil
		}(i)
	}
	wg.Wait()

	var sold int
	for _, ok := range succeeded {
		if ok {
			sold++
		}
	}
	assert.Equal(t, 10, sold)

	rec, _ := l.Record("item-1")
	assert.Equal(t, 0, rec.Stock)
	assert.Len(t, l.Sales("item-1", 0), 10)
}
