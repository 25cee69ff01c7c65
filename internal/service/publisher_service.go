package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-docchat-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishRoomActivity(ctx context.Context, payload dto.RoomActivityMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishRoomActivity(ctx context.Context, payload dto.RoomActivityMessage) error {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now()
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), msgJson)
	msg.SetContext(ctx)

	return ps.pubSub.Publish(ps.topicName, msg)
}
