package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatRoomID struct {
	ChatRoomID uuid.UUID
}

func (s ByChatRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_room_id = ?", s.ChatRoomID)
}

// ByRoomUuidAndOwner is the compound room key: the same room identifier
// requested by two different users resolves to two different rooms.
type ByRoomUuidAndOwner struct {
	RoomUuid uuid.UUID
	UserID   uuid.UUID
}

func (s ByRoomUuidAndOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_uuid = ? AND user_id = ?", s.RoomUuid, s.UserID)
}

type ByOwner struct {
	UserID uuid.UUID
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// WithMessages keeps only rooms that have at least one message.
type WithMessages struct{}

func (s WithMessages) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM chat_messages m WHERE m.chat_room_id = chat_rooms.id AND m.deleted_at IS NULL)")
}
