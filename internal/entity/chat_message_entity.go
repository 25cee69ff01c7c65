package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage content is final at creation: when a document is attached, the
// extracted text is substituted before the insert, never on read.
type ChatMessage struct {
	Id         uuid.UUID
	ChatRoomId uuid.UUID
	UserId     uuid.UUID
	Role       MessageRole
	Content    string
	FilePath   *string
	FileMeta   *AttachmentMeta
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
}

// AttachmentMeta describes the uploaded document, persisted as JSON.
type AttachmentMeta struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Sha256 string `json:"sha256"`
}
