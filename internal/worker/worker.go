package worker

import (
	"context"

	"shop-helper/internal/broker"
	"shop-helper/internal/models"
	"shop-helper/internal/service"
	"shop-helper/internal/util"

	"go.uber.org/zap"
)

// ObservationWorker feeds capture events from the OCR collaborator into the
// reconciliation engine. Capture I/O ends at the topic boundary; by the time
// a message reaches the engine it is just text and a timestamp.
type ObservationWorker struct {
	consumer       *broker.Consumer
	captureHandler *broker.CaptureHandler
	observations   *service.ObservationService
	logger         *zap.Logger
}

// NewObservationWorker creates a new observation worker
func NewObservationWorker(
	consumer *broker.Consumer,
	observations *service.ObservationService,
) *ObservationWorker {
	w := &ObservationWorker{
		consumer:     consumer,
		observations: observations,
		logger:       util.GetLogger(),
	}

	captureHandler := broker.NewCaptureHandler()
	captureHandler.OnCapture(w.handleCapture)
	w.captureHandler = captureHandler

	return w
}

func (w *ObservationWorker) handleCapture(ctx context.Context, event *models.CaptureEvent) error {
	obs := models.Observation{
		RawText:    event.RawText,
		CapturedAt: event.CapturedAt,
	}

	res := w.observations.Resolve(ctx, obs)
	w.logger.Debug("Capture processed",
		zap.String("state", res.State),
		zap.String("raw_text", event.RawText))
	return nil
}

// Start starts the worker
func (w *ObservationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting observation worker")
	return w.consumer.StartConsuming(ctx, w.captureHandler.HandleMessage)
}

// Stop stops the worker
func (w *ObservationWorker) Stop() error {
	w.logger.Info("Stopping observation worker")
	return w.consumer.Close()
}
