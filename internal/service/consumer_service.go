package service

import (
	"context"
	"encoding/json"
	"time"

	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const EventNoteVersionCreated = "NOTE_VERSION_CREATED"

// EventRelay forwards domain events outside the process (NATS in production).
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

// VersionNotifier pushes version messages to the owner's open sessions.
type VersionNotifier interface {
	NotifyVersion(ownerId uuid.UUID, msg dto.PublishVersionMessage)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      EventRelay
	notifier   VersionNotifier
	log        logger.ILogger
}

// NewConsumerService drains version messages from the in-process bus.
// relay and notifier may both be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	relay EventRelay,
	notifier VersionNotifier,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		notifier:   notifier,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishVersionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("VersionConsumer", "dropping malformed message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"note_id": payload.NoteId,
		"version": payload.Version,
		"action":  payload.Action,
	}
	cs.log.Info("VersionConsumer", "note version recorded", details)

	if cs.notifier != nil {
		cs.notifier.NotifyVersion(payload.OwnerId, payload)
	}

	if cs.relay != nil {
		evt := events.BaseEvent{
			Type: EventNoteVersionCreated,
			Data: map[string]interface{}{
				"note_id":   payload.NoteId.String(),
				"owner_id":  payload.OwnerId.String(),
				"version":   payload.Version,
				"editor_id": payload.EditorId,
				"action":    payload.Action,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.relay.Publish(ctx, evt); err != nil {
			cs.log.Warn("VersionConsumer", "failed to relay event", map[string]interface{}{
				"note_id": payload.NoteId,
				"version": payload.Version,
				"error":   err.Error(),
			})
		}
	}

	msg.Ack()
}
