package service

import (
	"context"
	"time"

	"shop-helper/internal/broker"
	"shop-helper/internal/ledger"
	"shop-helper/internal/models"
	"shop-helper/internal/reconcile"
	"shop-helper/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObservationService runs captured text through the reconciliation engine
// and publishes the terminal state. It never mutates stock or price; an
// accepted resolution only carries the item's current asking price so the
// caller can copy it.
type ObservationService struct {
	engine *reconcile.Engine
	ledger *ledger.Ledger
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewObservationService creates a new observation service
func NewObservationService(
	engine *reconcile.Engine,
	led *ledger.Ledger,
	events *broker.EventPublisher,
) *ObservationService {
	return &ObservationService{
		engine: engine,
		ledger: led,
		events: events,
		logger: util.GetLogger(),
	}
}

// Resolve resolves one observation with the default policy
func (s *ObservationService) Resolve(ctx context.Context, obs models.Observation) reconcile.Resolution {
	return s.resolve(ctx, obs, nil)
}

// ResolveWith resolves one observation with a policy override
func (s *ObservationService) ResolveWith(ctx context.Context, obs models.Observation, policy reconcile.Policy) reconcile.Resolution {
	return s.resolve(ctx, obs, &policy)
}

func (s *ObservationService) resolve(ctx context.Context, obs models.Observation, policy *reconcile.Policy) reconcile.Resolution {
	ctx, span := util.StartSpan(ctx, "ObservationService.Resolve")
	defer span.End()

	start := time.Now()
	var res reconcile.Resolution
	if policy != nil {
		res = s.engine.ResolveWith(obs, *policy)
	} else {
		res = s.engine.Resolve(obs)
	}
	util.ResolveLatency.Observe(time.Since(start).Seconds())
	util.ObservationsTotal.WithLabelValues(res.State).Inc()

	switch res.State {
	case models.ResolutionAccepted:
		util.MatchScore.Observe(float64(res.Score))
		s.publishAccepted(ctx, obs, &res)
	case models.ResolutionAmbiguous:
		s.publishAmbiguous(ctx, obs, res.Candidates)
	case models.ResolutionPendingManualEntry:
		s.publishUnmatched(ctx, obs)
	}

	s.logger.Info("Observation resolved",
		zap.String("state", res.State),
		zap.String("raw_text", obs.RawText),
		zap.Int("score", res.Score))

	return res
}

func (s *ObservationService) publishAccepted(ctx context.Context, obs models.Observation, res *reconcile.Resolution) {
	if s.events == nil {
		return
	}

	event := &models.ItemObservedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeItemObserved),
		ItemID:      res.Item.ID,
		DisplayName: res.Item.DisplayName,
		RawText:     obs.RawText,
		Score:       res.Score,
	}
	if rec, ok := s.ledger.Record(res.Item.ID); ok {
		event.AskingPrice = rec.AskingPrice
	}

	if err := s.events.PublishItemObserved(ctx, event); err != nil {
		s.logger.Error("Failed to publish ItemObserved event", zap.Error(err))
	}
}

func (s *ObservationService) publishAmbiguous(ctx context.Context, obs models.Observation, candidates []models.MatchCandidate) {
	if s.events == nil {
		return
	}
	event := &models.ItemAmbiguousEvent{
		BaseEvent:  newBaseEvent(models.EventTypeItemAmbiguous),
		RawText:    obs.RawText,
		Candidates: candidates,
	}
	if err := s.events.PublishItemAmbiguous(ctx, event); err != nil {
		s.logger.Error("Failed to publish ItemAmbiguous event", zap.Error(err))
	}
}

func (s *ObservationService) publishUnmatched(ctx context.Context, obs models.Observation) {
	if s.events == nil {
		return
	}
	event := &models.ItemUnmatchedEvent{
		BaseEvent: newBaseEvent(models.EventTypeItemUnmatched),
		RawText:   obs.RawText,
	}
	if err := s.events.PublishItemUnmatched(ctx, event); err != nil {
		s.logger.Error("Failed to publish ItemUnmatched event", zap.Error(err))
	}
}

// Recent returns the most recent resolutions, newest first
func (s *ObservationService) Recent(limit int) []reconcile.Resolution {
	return s.engine.Recent(limit)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}
