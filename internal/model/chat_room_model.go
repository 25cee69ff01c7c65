package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRoom struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomUuid    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_room_owner"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_room_owner;index"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}
