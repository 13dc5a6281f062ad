package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NSBM-SE-Projects/atelier/pkg/logger"
)

func TestNewEvent_CarriesCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "req-abc-123")

	event, err := newEvent(ctx, TopicCartCleared, "sess-1", AggregateTypeCart, CartClearedData{SessionID: "sess-1"})
	require.NoError(t, err)

	assert.Equal(t, "req-abc-123", event.CorrelationID)
	assert.Equal(t, TopicCartCleared, event.EventType)
	assert.Equal(t, SourceStorefront, event.Source)
}

func TestNewEvent_NoCorrelationIDInContext(t *testing.T) {
	event, err := newEvent(context.Background(), TopicUserRegistered, "42", AggregateTypeUser, UserRegisteredData{
		UserID:   42,
		Username: "amara",
		Email:    "amara@example.com",
	})
	require.NoError(t, err)

	assert.Empty(t, event.CorrelationID)
	assert.NotEmpty(t, event.EventID)

	var data UserRegisteredData
	require.NoError(t, event.UnmarshalData(&data))
	assert.Equal(t, "amara", data.Username)
}
