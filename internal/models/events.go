package models

import "time"

// Event types
const (
	EventTypeItemObserved  = "ITEM_OBSERVED"
	EventTypeItemAmbiguous = "ITEM_AMBIGUOUS"
	EventTypeItemUnmatched = "ITEM_UNMATCHED"
	EventTypeItemCreated   = "ITEM_CREATED"
	EventTypeItemRenamed   = "ITEM_RENAMED"
	EventTypeStockAdjusted = "STOCK_ADJUSTED"
	EventTypePriceChanged  = "PRICE_CHANGED"
	EventTypeSaleRecorded  = "SALE_RECORDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CaptureEvent is delivered by the capture collaborator for each OCR grab
type CaptureEvent struct {
	RawText    string    `json:"raw_text"`
	CapturedAt time.Time `json:"captured_at"`
}

// ItemObservedEvent published when an observation is accepted against a catalog item
type ItemObservedEvent struct {
	BaseEvent
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
	RawText     string `json:"raw_text"`
	Score       int    `json:"score"`
	AskingPrice *int64 `json:"asking_price,omitempty"`
}

// ItemAmbiguousEvent published when an observation has several viable candidates
type ItemAmbiguousEvent struct {
	BaseEvent
	RawText    string           `json:"raw_text"`
	Candidates []MatchCandidate `json:"candidates"`
}

// ItemUnmatchedEvent published when no catalog item reaches the threshold
type ItemUnmatchedEvent struct {
	BaseEvent
	RawText string `json:"raw_text"`
}

// ItemCreatedEvent published when a new catalog identity is confirmed
type ItemCreatedEvent struct {
	BaseEvent
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
}

// ItemRenamedEvent published when an item's display name is corrected
type ItemRenamedEvent struct {
	BaseEvent
	ItemID      string `json:"item_id"`
	OldName     string `json:"old_name"`
	DisplayName string `json:"display_name"`
}

// StockAdjustedEvent published after a successful stock adjustment
type StockAdjustedEvent struct {
	BaseEvent
	ItemID   string `json:"item_id"`
	Delta    int    `json:"delta"`
	NewStock int    `json:"new_stock"`
}

// PriceChangedEvent published after a successful price change
type PriceChangedEvent struct {
	BaseEvent
	ItemID   string `json:"item_id"`
	OldPrice *int64 `json:"old_price,omitempty"`
	NewPrice int64  `json:"new_price"`
}

// SaleRecordedEvent published after a sale is committed to the ledger
type SaleRecordedEvent struct {
	BaseEvent
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	SoldAt    time.Time `json:"sold_at"`
	NewStock  int       `json:"new_stock"`
}
