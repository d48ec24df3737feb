package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"shop-helper/internal/models"
)

var (
	// ErrNegativeStock is returned when an adjustment would drive stock below zero.
	ErrNegativeStock = errors.New("stock adjustment would go negative")

	// ErrInsufficientStock is returned when a sale exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock for sale")

	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidQuantity is returned for zero or negative sale quantities.
	ErrInvalidQuantity = errors.New("sale quantity must be positive")
)

// Ledger owns per-item stock, asking price and the append-only sale history.
// A single mutex covers records and sale entries so a reader never sees a
// stock decrement without its sale entry, or the reverse.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]*models.InventoryRecord
	sales   []models.SaleEntry
	nextID  int64
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		records: make(map[string]*models.InventoryRecord),
	}
}

// GetOrCreateRecord returns the inventory record for the item, creating a
// zero-stock record if none exists yet.
func (l *Ledger) GetOrCreateRecord(itemID string) models.InventoryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.getOrCreateLocked(itemID)
}

func (l *Ledger) getOrCreateLocked(itemID string) *models.InventoryRecord {
	if rec, ok := l.records[itemID]; ok {
		return rec
	}
	rec := &models.InventoryRecord{
		ItemID:    itemID,
		UpdatedAt: time.Now().UTC(),
	}
	l.records[itemID] = rec
	return rec
}

// AdjustStock applies a positive or negative delta and returns the new
// quantity. A delta that would take stock below zero is rejected wholesale.
func (l *Ledger) AdjustStock(itemID string, delta int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreateLocked(itemID)
	next := rec.Stock + delta
	if next < 0 {
		return rec.Stock, fmt.Errorf("%w: stock %d, delta %d", ErrNegativeStock, rec.Stock, delta)
	}

	rec.Stock = next
	rec.UpdatedAt = time.Now().UTC()
	return rec.Stock, nil
}

// SetPrice overwrites the current asking price. Returns the previous price
// (nil when the item had none) for audit events.
func (l *Ledger) SetPrice(itemID string, newPrice int64) (*int64, error) {
	if newPrice < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrice, newPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreateLocked(itemID)
	old := rec.AskingPrice
	rec.AskingPrice = &newPrice
	rec.UpdatedAt = time.Now().UTC()
	return old, nil
}

// RecordSale decrements stock, appends a sale entry and updates the
// last-sold fields as one atomic unit.
func (l *Ledger) RecordSale(itemID string, quantity int, unitPrice int64, soldAt time.Time) (models.SaleEntry, error) {
	if quantity <= 0 {
		return models.SaleEntry{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if unitPrice < 0 {
		return models.SaleEntry{}, fmt.Errorf("%w: %d", ErrInvalidPrice, unitPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.getOrCreateLocked(itemID)
	if rec.Stock < quantity {
		return models.SaleEntry{}, fmt.Errorf("%w: stock %d, requested %d", ErrInsufficientStock, rec.Stock, quantity)
	}

	l.nextID++
	entry := models.SaleEntry{
		ID:        l.nextID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		SoldAt:    soldAt,
	}

	rec.Stock -= quantity
	rec.LastSoldAt = &entry.SoldAt
	rec.LastSoldPrice = &entry.UnitPrice
	rec.UpdatedAt = time.Now().UTC()
	l.sales = append(l.sales, entry)

	return entry, nil
}

// Record returns a copy of the inventory record for the item
func (l *Ledger) Record(itemID string) (models.InventoryRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[itemID]
	if !ok {
		return models.InventoryRecord{}, false
	}
	return *rec, true
}

// Records returns a copy of all inventory records
func (l *Ledger) Records() []models.InventoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.InventoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	return out
}

// Sales returns sale entries, newest first, optionally filtered by item.
// limit <= 0 means no limit.
func (l *Ledger) Sales(itemID string, limit int) []models.SaleEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.SaleEntry, 0, len(l.sales))
	for i := len(l.sales) - 1; i >= 0; i-- {
		if itemID != "" && l.sales[i].ItemID != itemID {
			continue
		}
		out = append(out, l.sales[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// AllSales returns the full sale ledger in append order, for export
func (l *Ledger) AllSales() []models.SaleEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.SaleEntry(nil), l.sales...)
}

// PurgeSales removes sale entries older than the cutoff. Administrative
// operation; atomic with respect to concurrent reads.
func (l *Ledger) PurgeSales(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.sales[:0]
	removed := 0
	for _, entry := range l.sales {
		if entry.SoldAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	l.sales = kept
	return removed
}

// StaleRecords returns records with nonzero stock that have never sold, or
// whose last sale predates the cutoff.
func (l *Ledger) StaleRecords(cutoff time.Time) []models.InventoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.InventoryRecord, 0)
	for _, rec := range l.records {
		if rec.Stock == 0 {
			continue
		}
		if rec.LastSoldAt == nil || rec.LastSoldAt.Before(cutoff) {
			out = append(out, *rec)
		}
	}
	return out
}

// InventoryValue totals stock * asking price across all records
func (l *Ledger) InventoryValue() models.InventoryValue {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v := models.InventoryValue{TotalItems: len(l.records)}
	for _, rec := range l.records {
		if rec.Stock == 0 {
			continue
		}
		v.ItemsWithStock++
		if rec.AskingPrice != nil {
			v.TotalValue += int64(rec.Stock) * *rec.AskingPrice
		}
	}
	return v
}

// Stats summarizes the sale ledger
func (l *Ledger) Stats() models.LedgerStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := models.LedgerStats{TotalEntries: len(l.sales)}
	for _, entry := range l.sales {
		s.TotalQuantity += entry.Quantity
		s.TotalSalesValue += int64(entry.Quantity) * entry.UnitPrice
	}
	return s
}

// Hydrate replaces ledger contents with a validated snapshot
func (l *Ledger) Hydrate(records []models.InventoryRecord, sales []models.SaleEntry) error {
	byID := make(map[string]*models.InventoryRecord, len(records))
	var maxID int64

	for i := range records {
		rec := records[i]
		if rec.Stock < 0 {
			return fmt.Errorf("%w: item %s has stock %d", ErrNegativeStock, rec.ItemID, rec.Stock)
		}
		byID[rec.ItemID] = &rec
	}
	for _, entry := range sales {
		if entry.ID > maxID {
			maxID = entry.ID
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = byID
	l.sales = append([]models.SaleEntry(nil), sales...)
	l.nextID = maxID
	return nil
}
