package store

import (
	"context"
	"fmt"

	"shop-helper/internal/models"
	"shop-helper/internal/snapshot"
)

// SaveSnapshot replaces the persisted state with the snapshot in a single
// transaction, so a reader never observes a partially written export.
func (s *Store) SaveSnapshot(ctx context.Context, snap snapshot.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"sale_entries", "inventory_records", "catalog_items"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, item := range snap.Items {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO catalog_items (id, display_name, normalized_name, reference_price, seq, created_at)
			VALUES (:id, :display_name, :normalized_name, :reference_price, :seq, :created_at)`, item)
		if err != nil {
			return fmt.Errorf("failed to insert catalog item %s: %w", item.ID, err)
		}
	}

	for _, rec := range snap.Records {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO inventory_records (item_id, stock, asking_price, last_sold_at, last_sold_price, updated_at)
			VALUES (:item_id, :stock, :asking_price, :last_sold_at, :last_sold_price, :updated_at)`, rec)
		if err != nil {
			return fmt.Errorf("failed to insert inventory record %s: %w", rec.ItemID, err)
		}
	}

	for _, entry := range snap.Sales {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO sale_entries (id, item_id, quantity, unit_price, sold_at)
			VALUES (:id, :item_id, :quantity, :unit_price, :sold_at)`, entry)
		if err != nil {
			return fmt.Errorf("failed to insert sale entry %d: %w", entry.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted state. Validation is the importer's job;
// this only reproduces what was saved.
func (s *Store) LoadSnapshot(ctx context.Context) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot

	if err := s.db.SelectContext(ctx, &snap.Items,
		"SELECT * FROM catalog_items ORDER BY seq"); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to load catalog items: %w", err)
	}

	if err := s.db.SelectContext(ctx, &snap.Records,
		"SELECT * FROM inventory_records ORDER BY item_id"); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to load inventory records: %w", err)
	}

	if err := s.db.SelectContext(ctx, &snap.Sales,
		"SELECT * FROM sale_entries ORDER BY id"); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to load sale entries: %w", err)
	}

	if snap.Items == nil {
		snap.Items = []models.CatalogItem{}
	}
	return snap, nil
}
