package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService reacts to room activity: it bumps the room's updated_at so
// room listings sort by recent conversation, and mirrors the event to NATS
// for external consumers when a publisher is configured.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload dto.RoomActivityMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal room activity message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: payload.RoomId})
	if err != nil {
		log.Printf("[ERROR] Failed to get room %s: %v", payload.RoomId, err)
		msg.Nack()
		return
	}
	if room == nil {
		log.Printf("[WARN] Room not found: %s", payload.RoomId)
		msg.Ack() // Room deleted? Ack.
		return
	}

	if err := uow.ChatRoomRepository().Touch(ctx, room.Id); err != nil {
		log.Printf("[ERROR] Failed to touch room %s: %v", room.Id, err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "ROOM_ACTIVITY",
			Data: map[string]interface{}{
				"room_id":    payload.RoomId,
				"message_id": payload.MessageId,
			},
			OccurredAt: payload.OccurredAt,
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to mirror room activity to NATS: %v", err)
		}
	}

	msg.Ack()
}
