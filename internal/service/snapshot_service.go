package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"
	"shop-helper/internal/snapshot"
	"shop-helper/internal/store"
	"shop-helper/internal/util"

	"go.uber.org/zap"
)

// SnapshotService moves full state between the in-memory stores and the
// persistence collaborator, and serves the export/import API.
type SnapshotService struct {
	catalog *catalog.Store
	ledger  *ledger.Ledger
	store   *store.Store
	logger  *zap.Logger

	saveMu sync.Mutex
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(cat *catalog.Store, led *ledger.Ledger, st *store.Store) *SnapshotService {
	return &SnapshotService{
		catalog: cat,
		ledger:  led,
		store:   st,
		logger:  util.GetLogger(),
	}
}

// Export captures the full observable state
func (s *SnapshotService) Export() snapshot.Snapshot {
	return snapshot.Export(s.catalog, s.ledger)
}

// Import validates and loads a snapshot, replacing all current state.
// Nothing is loaded if validation fails.
func (s *SnapshotService) Import(ctx context.Context, snap snapshot.Snapshot) error {
	if err := snapshot.Import(snap, s.catalog, s.ledger); err != nil {
		return err
	}

	s.logger.Info("Snapshot imported",
		zap.Int("items", len(snap.Items)),
		zap.Int("records", len(snap.Records)),
		zap.Int("sales", len(snap.Sales)))

	return s.Save(ctx)
}

// Load restores state from the database at startup. An empty database is
// not an error; the shop just starts fresh.
func (s *SnapshotService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(snap.Items) == 0 {
		s.logger.Info("No persisted state, starting with empty catalog")
		return nil
	}

	if err := snapshot.Import(snap, s.catalog, s.ledger); err != nil {
		return fmt.Errorf("persisted state failed validation: %w", err)
	}

	s.logger.Info("Snapshot loaded",
		zap.Int("items", len(snap.Items)),
		zap.Int("records", len(snap.Records)),
		zap.Int("sales", len(snap.Sales)))
	return nil
}

// Save writes the current state to the database
func (s *SnapshotService) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()
	if err := s.store.SaveSnapshot(ctx, s.Export()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	util.SnapshotSaveLatency.Observe(time.Since(start).Seconds())
	return nil
}

// SaveAsync persists in the background so catalog and ledger commands do not
// block on the database; the in-memory stores are authoritative either way.
func (s *SnapshotService) SaveAsync() {
	if s.store == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Save(ctx); err != nil {
			s.logger.Error("Failed to persist snapshot", zap.Error(err))
		}
	}()
}
