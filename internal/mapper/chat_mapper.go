package mapper

import (
	"encoding/json"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Room Mappers

func (m *ChatMapper) ChatRoomToEntity(r *model.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}

	var deletedAt *time.Time
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatRoom{
		Id:          r.Id,
		RoomUuid:    r.RoomUuid,
		UserId:      r.UserId,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *ChatMapper) ChatRoomToModel(r *entity.ChatRoom) *model.ChatRoom {
	if r == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if r.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *r.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.ChatRoom{
		Id:          r.Id,
		RoomUuid:    r.RoomUuid,
		UserId:      r.UserId,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	var meta *entity.AttachmentMeta
	if len(msg.FileMeta) > 0 {
		var am entity.AttachmentMeta
		if err := json.Unmarshal(msg.FileMeta, &am); err == nil {
			meta = &am
		}
	}

	return &entity.ChatMessage{
		Id:         msg.Id,
		ChatRoomId: msg.ChatRoomId,
		UserId:     msg.UserId,
		Role:       entity.MessageRole(msg.Role),
		Content:    msg.Content,
		FilePath:   msg.FilePath,
		FileMeta:   meta,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var meta datatypes.JSON
	if msg.FileMeta != nil {
		if raw, err := json.Marshal(msg.FileMeta); err == nil {
			meta = raw
		}
	}

	return &model.ChatMessage{
		Id:         msg.Id,
		ChatRoomId: msg.ChatRoomId,
		UserId:     msg.UserId,
		Role:       string(msg.Role),
		Content:    msg.Content,
		FilePath:   msg.FilePath,
		FileMeta:   meta,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}
