package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	gorm.Model

	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"index" json:"userID"`
	Title     string    `gorm:"column:title" json:"title"`
	ModelName string    `gorm:"column:model_name" json:"model"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (ChatSession) TableName() string {
	return "chat_session"
}
