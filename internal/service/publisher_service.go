package service

import (
	"context"
	"encoding/json"

	"notes-versioning-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, msg dto.PublishVersionMessage) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
}

func NewPublisherService(topicName string, pubSub message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, msg dto.PublishVersionMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	m := message.NewMessage(watermill.NewUUID(), payload)
	m.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, m)
}
