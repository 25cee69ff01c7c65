package dto

import (
	"time"

	"github.com/google/uuid"
)

// InboundChatFrame is one websocket event from a client. A missing message is
// rejected for that event only; the connection stays open.
type InboundChatFrame struct {
	Message string       `json:"message"`
	File    *InboundFile `json:"file,omitempty"`
}

type InboundFile struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64
}

// OutboundChatFrame is the broadcast payload: the assistant reply only, sent
// to every connection in the room including the original sender.
type OutboundChatFrame struct {
	Uuid      uuid.UUID `json:"uuid"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	File      *string   `json:"file"`
}

// REST DTOs

type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type RoomResponse struct {
	Uuid        uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type CreateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Uuid      uuid.UUID `json:"uuid"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	File      *string   `json:"file"`
}

// RoomActivityMessage is published after every message insert so the room's
// last-activity timestamp can be bumped off the hot path.
type RoomActivityMessage struct {
	RoomId     uuid.UUID `json:"room_id"`
	MessageId  uuid.UUID `json:"message_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
