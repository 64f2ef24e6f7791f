package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserRegistered(ctx context.Context, ev usecase.UserRegisteredEvent) error {
	return m.publish(ctx, "PublishUserRegistered", event.UserRegisteredDestination, ev.UserID, event.UserRegisteredMessage{
		UserID:     ev.UserID,
		Email:      ev.Email,
		Name:       ev.Name,
		OccurredAt: ev.OccurredAt,
	})
}

func (m *Messaging) PublishUserLoggedOut(ctx context.Context, ev usecase.UserLoggedOutEvent) error {
	return m.publish(ctx, "PublishUserLoggedOut", event.UserLoggedOutDestination, ev.UserID, event.UserLoggedOutMessage{
		UserID:       ev.UserID,
		Email:        ev.Email,
		TokenRevoked: ev.TokenRevoked,
		OccurredAt:   ev.OccurredAt,
	})
}

// publish keys messages by user id so one user's events stay ordered on
// partitioned brokers.
func (m *Messaging) publish(ctx context.Context, span, destination string, userID int64, payload any) error {
	ctx, sp := m.ins.Tracer("auth.outbound.mq").Start(ctx, span)
	defer sp.End()

	body, err := json.Marshal(payload)
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(userID, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
