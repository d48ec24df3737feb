package snapshot

import (
	"errors"
	"fmt"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"
	"shop-helper/internal/models"
)

// ErrImportIntegrity is returned when a snapshot references unknown items or
// carries invalid values. Import is whole-or-nothing; nothing is loaded on
// failure.
var ErrImportIntegrity = errors.New("snapshot failed integrity validation")

// Snapshot is the full exportable state: catalog, inventory and sale ledger
type Snapshot struct {
	Items      []models.CatalogItem     `json:"items"`
	Records    []models.InventoryRecord `json:"records"`
	Sales      []models.SaleEntry       `json:"sales"`
	ExportedAt time.Time                `json:"exported_at"`
}

// Export captures the current state. The ledger is read before the catalog:
// the catalog only ever grows, so every item a record or sale references is
// present in the later catalog read.
func Export(cat *catalog.Store, led *ledger.Ledger) Snapshot {
	records := led.Records()
	sales := led.AllSales()
	items := cat.AllItems()

	return Snapshot{
		Items:      items,
		Records:    records,
		Sales:      sales,
		ExportedAt: time.Now().UTC(),
	}
}

// Validate checks referential integrity and value invariants
func (s Snapshot) Validate() error {
	ids := make(map[string]struct{}, len(s.Items))
	norms := make(map[string]string, len(s.Items))

	for _, item := range s.Items {
		if item.ID == "" {
			return fmt.Errorf("%w: item with empty id", ErrImportIntegrity)
		}
		if _, dup := ids[item.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %s", ErrImportIntegrity, item.ID)
		}
		norm := item.NormalizedName
		if norm == "" {
			norm = catalog.Normalize(item.DisplayName)
		}
		if norm == "" {
			return fmt.Errorf("%w: item %s has empty name", ErrImportIntegrity, item.ID)
		}
		if other, dup := norms[norm]; dup {
			return fmt.Errorf("%w: items %s and %s share normalized name %q",
				ErrImportIntegrity, other, item.ID, norm)
		}
		ids[item.ID] = struct{}{}
		norms[norm] = item.ID
	}

	seen := make(map[string]struct{}, len(s.Records))
	for _, rec := range s.Records {
		if _, ok := ids[rec.ItemID]; !ok {
			return fmt.Errorf("%w: inventory record references unknown item %s",
				ErrImportIntegrity, rec.ItemID)
		}
		if _, dup := seen[rec.ItemID]; dup {
			return fmt.Errorf("%w: duplicate inventory record for item %s",
				ErrImportIntegrity, rec.ItemID)
		}
		if rec.Stock < 0 {
			return fmt.Errorf("%w: item %s has negative stock %d",
				ErrImportIntegrity, rec.ItemID, rec.Stock)
		}
		if rec.AskingPrice != nil && *rec.AskingPrice < 0 {
			return fmt.Errorf("%w: item %s has negative price %d",
				ErrImportIntegrity, rec.ItemID, *rec.AskingPrice)
		}
		seen[rec.ItemID] = struct{}{}
	}

	for _, entry := range s.Sales {
		if _, ok := ids[entry.ItemID]; !ok {
			return fmt.Errorf("%w: sale entry references unknown item %s",
				ErrImportIntegrity, entry.ItemID)
		}
		if entry.Quantity <= 0 {
			return fmt.Errorf("%w: sale entry for item %s has quantity %d",
				ErrImportIntegrity, entry.ItemID, entry.Quantity)
		}
		if entry.UnitPrice < 0 {
			return fmt.Errorf("%w: sale entry for item %s has price %d",
				ErrImportIntegrity, entry.ItemID, entry.UnitPrice)
		}
	}

	return nil
}

// Import validates the snapshot and replaces the contents of both stores.
// On any validation failure neither store is touched.
func Import(s Snapshot, cat *catalog.Store, led *ledger.Ledger) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := cat.Hydrate(s.Items); err != nil {
		return fmt.Errorf("%w: %v", ErrImportIntegrity, err)
	}
	if err := led.Hydrate(s.Records, s.Sales); err != nil {
		return fmt.Errorf("%w: %v", ErrImportIntegrity, err)
	}
	return nil
}
