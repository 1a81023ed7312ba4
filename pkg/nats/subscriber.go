package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"notes-versioning-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber reads note events back from the NOTE_EVENTS stream.
type Subscriber struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	cons jetstream.ConsumeContext
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe attaches a durable consumer filtered on subject. A handler error
// naks the message so JetStream redelivers it.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	s.cons, err = consumer.Consume(func(msg jetstream.Msg) {
		event, err := decodeEvent(msg.Data())
		if err != nil {
			log.Printf("Error unmarshalling event on %s: %v", msg.Subject(), err)
			// redelivery will not fix a malformed payload
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// decodeEvent reverses the envelope written by Publisher.Publish.
func decodeEvent(data []byte) (events.Event, error) {
	var envelope struct {
		Type       string                 `json:"type"`
		Data       map[string]interface{} `json:"data"`
		OccurredAt time.Time              `json:"occurred_at"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return events.BaseEvent{
		Type:       envelope.Type,
		Data:       envelope.Data,
		OccurredAt: envelope.OccurredAt,
	}, nil
}

func (s *Subscriber) Close() {
	if s.cons != nil {
		s.cons.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
