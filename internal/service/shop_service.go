package service

import (
	"context"
	"fmt"
	"time"

	"shop-helper/internal/broker"
	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"
	"shop-helper/internal/models"
	"shop-helper/internal/redisclient"
	"shop-helper/internal/util"

	"go.uber.org/zap"
)

// ShopService owns the explicit catalog and ledger commands. Every mutation
// here is an operator decision; nothing is triggered automatically by a
// resolution outcome.
type ShopService struct {
	catalog *catalog.Store
	ledger  *ledger.Ledger
	redis   *redisclient.Client
	events  *broker.EventPublisher
	saver   *SnapshotService
	logger  *zap.Logger
}

// NewShopService creates a new shop service
func NewShopService(
	cat *catalog.Store,
	led *ledger.Ledger,
	redis *redisclient.Client,
	events *broker.EventPublisher,
	saver *SnapshotService,
) *ShopService {
	return &ShopService{
		catalog: cat,
		ledger:  led,
		redis:   redis,
		events:  events,
		saver:   saver,
		logger:  util.GetLogger(),
	}
}

// ItemView pairs a catalog item with its inventory record for display
type ItemView struct {
	Item   models.CatalogItem      `json:"item"`
	Record *models.InventoryRecord `json:"record,omitempty"`
}

// CreateItem confirms a new catalog identity
func (s *ShopService) CreateItem(ctx context.Context, displayName string, referencePrice *int64) (models.CatalogItem, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.CreateItem")
	defer span.End()

	item, err := s.catalog.Create(displayName, referencePrice)
	if err != nil {
		util.LedgerErrorsTotal.WithLabelValues("create_item").Inc()
		return models.CatalogItem{}, err
	}

	util.ItemsCreatedTotal.Inc()
	s.logger.Info("Catalog item created",
		zap.String("item_id", item.ID),
		zap.String("display_name", item.DisplayName))

	if s.events != nil {
		event := &models.ItemCreatedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeItemCreated),
			ItemID:      item.ID,
			DisplayName: item.DisplayName,
		}
		if err := s.events.PublishItemCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish ItemCreated event", zap.Error(err))
		}
	}

	s.persist()
	return item, nil
}

// RenameItem corrects an item's display name, keeping its identity
func (s *ShopService) RenameItem(ctx context.Context, itemID, newDisplayName string) (models.CatalogItem, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.RenameItem")
	defer span.End()

	old, ok := s.catalog.LookupByID(itemID)
	if !ok {
		util.LedgerErrorsTotal.WithLabelValues("rename_item").Inc()
		return models.CatalogItem{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}

	item, err := s.catalog.Rename(itemID, newDisplayName)
	if err != nil {
		util.LedgerErrorsTotal.WithLabelValues("rename_item").Inc()
		return models.CatalogItem{}, err
	}

	util.ItemsRenamedTotal.Inc()
	s.logger.Info("Catalog item renamed",
		zap.String("item_id", itemID),
		zap.String("old_name", old.DisplayName),
		zap.String("new_name", item.DisplayName))

	if s.events != nil {
		event := &models.ItemRenamedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeItemRenamed),
			ItemID:      itemID,
			OldName:     old.DisplayName,
			DisplayName: item.DisplayName,
		}
		if err := s.events.PublishItemRenamed(ctx, event); err != nil {
			s.logger.Error("Failed to publish ItemRenamed event", zap.Error(err))
		}
	}

	s.persist()
	return item, nil
}

// AdjustStock applies a stock delta for an item
func (s *ShopService) AdjustStock(ctx context.Context, itemID string, delta int) (int, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.AdjustStock")
	defer span.End()

	if _, ok := s.catalog.LookupByID(itemID); !ok {
		util.LedgerErrorsTotal.WithLabelValues("adjust_stock").Inc()
		return 0, fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}

	newStock, err := s.ledger.AdjustStock(itemID, delta)
	if err != nil {
		util.LedgerErrorsTotal.WithLabelValues("adjust_stock").Inc()
		return newStock, err
	}

	direction := "restock"
	if delta < 0 {
		direction = "removal"
	}
	util.StockAdjustmentsTotal.WithLabelValues(direction).Inc()

	s.syncCache(ctx, itemID)

	if s.events != nil {
		event := &models.StockAdjustedEvent{
			BaseEvent: newBaseEvent(models.EventTypeStockAdjusted),
			ItemID:    itemID,
			Delta:     delta,
			NewStock:  newStock,
		}
		if err := s.events.PublishStockAdjusted(ctx, event); err != nil {
			s.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
		}
	}

	s.persist()
	return newStock, nil
}

// SetPrice overwrites the asking price for an item
func (s *ShopService) SetPrice(ctx context.Context, itemID string, newPrice int64) error {
	ctx, span := util.StartSpan(ctx, "ShopService.SetPrice")
	defer span.End()

	if _, ok := s.catalog.LookupByID(itemID); !ok {
		util.LedgerErrorsTotal.WithLabelValues("set_price").Inc()
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}

	oldPrice, err := s.ledger.SetPrice(itemID, newPrice)
	if err != nil {
		util.LedgerErrorsTotal.WithLabelValues("set_price").Inc()
		return err
	}

	util.PriceChangesTotal.Inc()
	s.syncCache(ctx, itemID)

	if s.events != nil {
		event := &models.PriceChangedEvent{
			BaseEvent: newBaseEvent(models.EventTypePriceChanged),
			ItemID:    itemID,
			OldPrice:  oldPrice,
			NewPrice:  newPrice,
		}
		if err := s.events.PublishPriceChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish PriceChanged event", zap.Error(err))
		}
	}

	s.persist()
	return nil
}

// RecordSale commits a sale against an item's stock
func (s *ShopService) RecordSale(ctx context.Context, itemID string, quantity int, unitPrice int64, soldAt time.Time) (models.SaleEntry, error) {
	ctx, span := util.StartSpan(ctx, "ShopService.RecordSale")
	defer span.End()

	if _, ok := s.catalog.LookupByID(itemID); !ok {
		util.LedgerErrorsTotal.WithLabelValues("record_sale").Inc()
		return models.SaleEntry{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}
	if soldAt.IsZero() {
		soldAt = time.Now().UTC()
	}

	entry, err := s.ledger.RecordSale(itemID, quantity, unitPrice, soldAt)
	if err != nil {
		util.LedgerErrorsTotal.WithLabelValues("record_sale").Inc()
		return models.SaleEntry{}, err
	}

	util.SalesRecordedTotal.Inc()
	util.SalesValueTotal.Add(float64(int64(quantity) * unitPrice))

	rec, _ := s.ledger.Record(itemID)
	s.syncCache(ctx, itemID)

	s.logger.Info("Sale recorded",
		zap.String("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.Int64("unit_price", unitPrice),
		zap.Int("new_stock", rec.Stock))

	if s.events != nil {
		event := &models.SaleRecordedEvent{
			BaseEvent: newBaseEvent(models.EventTypeSaleRecorded),
			ItemID:    itemID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			SoldAt:    entry.SoldAt,
			NewStock:  rec.Stock,
		}
		if err := s.events.PublishSaleRecorded(ctx, event); err != nil {
			s.logger.Error("Failed to publish SaleRecorded event", zap.Error(err))
		}
	}

	s.persist()
	return entry, nil
}

// GetItem returns an item with its inventory record
func (s *ShopService) GetItem(itemID string) (ItemView, error) {
	item, ok := s.catalog.LookupByID(itemID)
	if !ok {
		return ItemView{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}

	view := ItemView{Item: item}
	if rec, ok := s.ledger.Record(itemID); ok {
		view.Record = &rec
	}
	return view, nil
}

// ListItems returns all items with their inventory records
func (s *ShopService) ListItems() []ItemView {
	items := s.catalog.AllItems()
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{Item: item}
		if rec, ok := s.ledger.Record(item.ID); ok {
			view.Record = &rec
		}
		views = append(views, view)
	}
	return views
}

// ItemPrice returns the current asking price for an item, preferring the
// redis cache and falling back to the ledger. Used for the price-copy flow.
func (s *ShopService) ItemPrice(ctx context.Context, itemID string) (*int64, error) {
	if _, ok := s.catalog.LookupByID(itemID); !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, itemID)
	}

	if s.redis != nil {
		if price, found, err := s.redis.GetPrice(ctx, itemID); err == nil && found {
			return &price, nil
		} else if err != nil {
			s.logger.Warn("Price cache read failed, falling back to ledger",
				zap.String("item_id", itemID), zap.Error(err))
		}
	}

	rec, ok := s.ledger.Record(itemID)
	if !ok {
		return nil, nil
	}
	return rec.AskingPrice, nil
}

// StaleItems returns stocked items that never sold, or last sold before the
// staleness window.
func (s *ShopService) StaleItems(window time.Duration) []models.StaleItem {
	cutoff := time.Now().UTC().Add(-window)
	records := s.ledger.StaleRecords(cutoff)

	out := make([]models.StaleItem, 0, len(records))
	for _, rec := range records {
		item, ok := s.catalog.LookupByID(rec.ItemID)
		if !ok {
			continue
		}
		stale := models.StaleItem{
			Item:       item,
			Stock:      rec.Stock,
			LastSoldAt: rec.LastSoldAt,
		}
		switch {
		case rec.AskingPrice != nil:
			stale.LastKnownPrice = rec.AskingPrice
		case rec.LastSoldPrice != nil:
			stale.LastKnownPrice = rec.LastSoldPrice
		default:
			stale.LastKnownPrice = item.ReferencePrice
		}
		out = append(out, stale)
	}
	return out
}

// Sales lists recorded sales, newest first
func (s *ShopService) Sales(itemID string, limit int) []models.SaleEntry {
	return s.ledger.Sales(itemID, limit)
}

// PurgeSales removes sale entries older than the cutoff
func (s *ShopService) PurgeSales(ctx context.Context, before time.Time) int {
	removed := s.ledger.PurgeSales(before)
	if removed > 0 {
		s.logger.Info("Purged sale entries",
			zap.Int("removed", removed),
			zap.Time("before", before))
		s.persist()
	}
	return removed
}

// InventoryValue totals the current stock value
func (s *ShopService) InventoryValue() models.InventoryValue {
	return s.ledger.InventoryValue()
}

// LedgerStats summarizes the sale ledger
func (s *ShopService) LedgerStats() models.LedgerStats {
	return s.ledger.Stats()
}

// SyncCacheAll pushes price and stock for every record into redis, used at
// startup after a snapshot load.
func (s *ShopService) SyncCacheAll(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	records := s.ledger.Records()
	for _, rec := range records {
		if err := s.redis.SyncItem(ctx, rec.ItemID, rec.AskingPrice, rec.Stock); err != nil {
			s.logger.Error("Failed to sync item cache",
				zap.String("item_id", rec.ItemID), zap.Error(err))
		}
	}

	s.logger.Info("Cache sync completed", zap.Int("count", len(records)))
	return nil
}

func (s *ShopService) syncCache(ctx context.Context, itemID string) {
	if s.redis == nil {
		return
	}
	rec, ok := s.ledger.Record(itemID)
	if !ok {
		return
	}
	if err := s.redis.SyncItem(ctx, itemID, rec.AskingPrice, rec.Stock); err != nil {
		s.logger.Warn("Failed to sync item cache",
			zap.String("item_id", itemID), zap.Error(err))
	}
}

func (s *ShopService) persist() {
	if s.saver == nil {
		return
	}
	s.saver.SaveAsync()
}
