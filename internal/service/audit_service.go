package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/travel-desk/itinerary-service/internal/events"
)

// AuditService writes every domain event to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventIdentityRegistered, a.handleIdentityEvent)
	a.dispatcher.Subscribe(events.EventIdentityProvisioned, a.handleIdentityEvent)
	a.dispatcher.Subscribe(events.EventItineraryCreated, a.handleItineraryEvent)
	a.dispatcher.Subscribe(events.EventItineraryUpdated, a.handleItineraryEvent)
	a.dispatcher.Subscribe(events.EventItineraryWithdrawn, a.handleItineraryEvent)
	a.dispatcher.Subscribe(events.EventItineraryDeleted, a.handleItineraryEvent)
}

func (a *AuditService) handleIdentityEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleItineraryEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("actor_id", event.ActorID),
		zap.Int64("itinerary_id", event.ItineraryID),
		zap.Any("payload", event.Payload))
	return nil
}
