package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"shop-helper/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateItem is returned when a create would collide with an
	// existing normalized name.
	ErrDuplicateItem = errors.New("catalog item already exists")

	// ErrNotFound is returned when an item id is unknown.
	ErrNotFound = errors.New("catalog item not found")

	// ErrEmptyName is returned when a name normalizes to nothing.
	ErrEmptyName = errors.New("item name is empty after normalization")
)

// Store holds canonical item records and a normalized-name index.
// All mutations hold the write lock for their full duration so lookups
// never observe a half-applied create or rename.
type Store struct {
	mu     sync.RWMutex
	items  map[string]*models.CatalogItem // by id
	byNorm map[string]string              // normalized name -> id
	seq    int64
}

// NewStore creates an empty catalog store
func NewStore() *Store {
	return &Store{
		items:  make(map[string]*models.CatalogItem),
		byNorm: make(map[string]string),
	}
}

// Create allocates a new catalog identity for a confirmed item name.
// Fails with ErrDuplicateItem if the normalized name is already taken.
func (s *Store) Create(displayName string, referencePrice *int64) (models.CatalogItem, error) {
	norm := Normalize(displayName)
	if norm == "" {
		return models.CatalogItem{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNorm[norm]; exists {
		return models.CatalogItem{}, fmt.Errorf("%w: %q", ErrDuplicateItem, norm)
	}

	s.seq++
	item := &models.CatalogItem{
		ID:             uuid.New().String(),
		DisplayName:    displayName,
		NormalizedName: norm,
		ReferencePrice: referencePrice,
		Seq:            s.seq,
		CreatedAt:      time.Now().UTC(),
	}

	s.items[item.ID] = item
	s.byNorm[norm] = item.ID

	return *item, nil
}

// Rename corrects an item's display name, keeping its identity. The
// normalized-name index is updated under the same lock as the rename.
func (s *Store) Rename(itemID, newDisplayName string) (models.CatalogItem, error) {
	norm := Normalize(newDisplayName)
	if norm == "" {
		return models.CatalogItem{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return models.CatalogItem{}, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}

	if other, exists := s.byNorm[norm]; exists && other != itemID {
		return models.CatalogItem{}, fmt.Errorf("%w: %q", ErrDuplicateItem, norm)
	}

	delete(s.byNorm, item.NormalizedName)
	item.DisplayName = newDisplayName
	item.NormalizedName = norm
	s.byNorm[norm] = itemID

	return *item, nil
}

// LookupByNormalizedName returns the item whose normalized name equals the
// normalization of the given name.
func (s *Store) LookupByNormalizedName(name string) (models.CatalogItem, bool) {
	norm := Normalize(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNorm[norm]
	if !ok {
		return models.CatalogItem{}, false
	}
	return *s.items[id], true
}

// LookupByID returns the item with the given id
func (s *Store) LookupByID(itemID string) (models.CatalogItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return models.CatalogItem{}, false
	}
	return *item, true
}

// AllItems returns every catalog item in insertion order
func (s *Store) AllItems() []models.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.CatalogItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	return items
}

// Len returns the number of catalog items
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Hydrate replaces the store contents with a validated snapshot. Used on
// import; callers must have checked integrity first.
func (s *Store) Hydrate(items []models.CatalogItem) error {
	byID := make(map[string]*models.CatalogItem, len(items))
	byNorm := make(map[string]string, len(items))
	var maxSeq int64

	for i := range items {
		item := items[i]
		if item.NormalizedName == "" {
			item.NormalizedName = Normalize(item.DisplayName)
		}
		if _, dup := byNorm[item.NormalizedName]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateItem, item.NormalizedName)
		}
		byID[item.ID] = &item
		byNorm[item.NormalizedName] = item.ID
		if item.Seq > maxSeq {
			maxSeq = item.Seq
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = byID
	s.byNorm = byNorm
	s.seq = maxSeq
	return nil
}
