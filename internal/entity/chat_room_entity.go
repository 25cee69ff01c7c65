package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom is keyed by (RoomUuid, UserId). The same raw identifier requested
// by two different users yields two distinct rooms.
type ChatRoom struct {
	Id          uuid.UUID
	RoomUuid    uuid.UUID
	UserId      uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}
