package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (r *recordingPublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	r.destination, r.msg = destination, msg
	return messaging.PublishResult{Topic: destination}, r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestMessaging_PublishUserRegistered(t *testing.T) {
	// Arrange
	pub := &recordingPublisher{}
	m := NewMessaging(pub, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "cid-123")
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	// Act
	err := m.PublishUserRegistered(ctx, usecase.UserRegisteredEvent{UserID: 77, Email: "a@x.io", Name: "Ann", OccurredAt: at})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, event.UserRegisteredDestination, pub.destination)
	assert.Equal(t, []byte("77"), pub.msg.Key)

	cid, ok := pub.msg.HeaderValue(keyOfCorrelationID)
	assert.True(t, ok)
	assert.Equal(t, "cid-123", cid)

	var body event.UserRegisteredMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, int64(77), body.UserID)
	assert.Equal(t, "Ann", body.Name)
	assert.True(t, at.Equal(body.OccurredAt))
}

func TestMessaging_PublishUserLoggedOutError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := NewMessaging(pub, instrument.NewNoop())

	err := m.PublishUserLoggedOut(context.Background(), usecase.UserLoggedOutEvent{UserID: 1, TokenRevoked: true})

	assert.EqualError(t, err, "broker down")
	assert.Equal(t, event.UserLoggedOutDestination, pub.destination)
}
