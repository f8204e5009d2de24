package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
)

// AuditService writes an audit line for every domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes() {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordEvent(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("resource_id", event.ResourceID),
		zap.String("actor_id", event.Actor.AccountID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}

	switch event.Type {
	case events.EventAccountStatusChanged, events.EventPasswordChanged, events.EventAccountLoggedOut:
		a.logger.Warn("security event", fields...)
	default:
		a.logger.Info("domain event", fields...)
	}
	return nil
}
