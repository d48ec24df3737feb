package models

import "time"

// CatalogItem represents a known item identity in the shop catalog
type CatalogItem struct {
	ID             string    `db:"id" json:"id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	NormalizedName string    `db:"normalized_name" json:"normalized_name"`
	ReferencePrice *int64    `db:"reference_price" json:"reference_price,omitempty"`
	Seq            int64     `db:"seq" json:"seq"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// InventoryRecord represents stock state for a catalog item
type InventoryRecord struct {
	ItemID        string     `db:"item_id" json:"item_id"`
	Stock         int        `db:"stock" json:"stock"`
	AskingPrice   *int64     `db:"asking_price" json:"asking_price,omitempty"`
	LastSoldAt    *time.Time `db:"last_sold_at" json:"last_sold_at,omitempty"`
	LastSoldPrice *int64     `db:"last_sold_price" json:"last_sold_price,omitempty"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// SaleEntry represents one completed sale; entries are append-only
type SaleEntry struct {
	ID        int64     `db:"id" json:"id"`
	ItemID    string    `db:"item_id" json:"item_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UnitPrice int64     `db:"unit_price" json:"unit_price"`
	SoldAt    time.Time `db:"sold_at" json:"sold_at"`
}

// Observation represents a single raw text capture awaiting resolution
type Observation struct {
	RawText    string    `json:"raw_text"`
	CapturedAt time.Time `json:"captured_at"`
}

// MatchCandidate represents one scored catalog item for an observation
type MatchCandidate struct {
	ItemID string `json:"item_id"`
	Score  int    `json:"score"`
}

// StaleItem pairs a stocked but never-sold (or long-unsold) item with its last known price
type StaleItem struct {
	Item           CatalogItem `json:"item"`
	Stock          int         `json:"stock"`
	LastKnownPrice *int64      `json:"last_known_price,omitempty"`
	LastSoldAt     *time.Time  `json:"last_sold_at,omitempty"`
}

// InventoryValue summarizes the value of all stocked items
type InventoryValue struct {
	TotalItems     int   `json:"total_items"`
	ItemsWithStock int   `json:"items_with_stock"`
	TotalValue     int64 `json:"total_value"`
}

// LedgerStats summarizes the sale ledger
type LedgerStats struct {
	TotalEntries    int   `json:"total_entries"`
	TotalQuantity   int   `json:"total_quantity"`
	TotalSalesValue int64 `json:"total_sales_value"`
}

// Resolution states
const (
	ResolutionAccepted           = "ACCEPTED"
	ResolutionAmbiguous          = "AMBIGUOUS"
	ResolutionRejected           = "REJECTED"
	ResolutionPendingManualEntry = "PENDING_MANUAL_ENTRY"
)
