package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	audit := NewAuditService(dispatcher, zap.New(core), metrics)
	audit.RegisterHandlers()

	pub := newPublisher(dispatcher, zap.NewNop())
	pub.publishEvent(context.Background(), events.Event{
		Type:       events.EventOrderBooked,
		ResourceID: "order-1",
		Actor:      vendorV.actor(),
		Payload:    events.OrderBookedPayload{Quantity: 2},
	})
	pub.publishEvent(context.Background(), events.Event{Type: events.EventAccountLoggedOut, ResourceID: "acc-1"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "domain event", entries[0].Message)
	assert.Equal(t, "order-1", entries[0].ContextMap()["resource_id"])
	assert.NotEmpty(t, entries[0].ContextMap()["event_id"])
	assert.Equal(t, "security event", entries[1].Message)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Events[string(events.EventOrderBooked)])
	assert.Equal(t, int64(1), snap.Events[string(events.EventAccountLoggedOut)])
}
