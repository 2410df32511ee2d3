package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Attachment is one inline reference carried by a message, serialized
// into the attachments JSON column.
type Attachment struct {
	URL  string `json:"url"`
	Kind string `json:"kind"` // "image" | "file"
}

type ChatMessage struct {
	gorm.Model

	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID   uuid.UUID      `gorm:"index" json:"sessionID"`
	UserID      *uuid.UUID     `gorm:"index;null" json:"userID,omitempty"`
	Role        string         `gorm:"column:role" json:"role"`
	Content     string         `gorm:"column:content" json:"content"`
	Attachments datatypes.JSON `gorm:"column:attachments" json:"attachments,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updatedAt"`
}

func (ChatMessage) TableName() string {
	return "chat_message"
}
