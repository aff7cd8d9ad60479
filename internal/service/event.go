package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/sirupsen/logrus"
)

// EventPublisher announces user lifecycle changes. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType dto.UserEventType, userID, actorID string)
}

type eventPublisher struct {
	rabbitClient client.RabbitClient
	now          func() time.Time
}

func newEventPublisher(rabbitClient client.RabbitClient) EventPublisher {
	return &eventPublisher{
		rabbitClient: rabbitClient,
		now:          time.Now,
	}
}

func (e *eventPublisher) Publish(ctx context.Context, eventType dto.UserEventType, userID, actorID string) {
	event := dto.UserEvent{
		Type:       eventType,
		UserID:     userID,
		ActorID:    actorID,
		OccurredAt: e.now().UTC(),
	}

	eventJson, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("Error marshaling user event: %v", err)
		return
	}

	err = e.rabbitClient.PublishMessage(ctx, string(eventType), eventJson)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"event":  eventType,
			"userId": userID,
		}).Errorf("Error publishing user event: %v", err)
	}
}
