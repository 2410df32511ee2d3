package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FileObject struct {
	gorm.Model

	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"index;not null" json:"userID"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	Mime      string         `gorm:"not null;column:mime" json:"mime"`
	SizeBytes int64          `gorm:"not null;column:size_bytes" json:"sizeBytes"`
	BucketKey string         `gorm:"not null;column:bucket_key" json:"bucketKey"`
	PublicURL string         `gorm:"column:public_url" json:"publicURL"`
	Analysis  datatypes.JSON `gorm:"column:analysis" json:"analysis,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (FileObject) TableName() string {
	return "file_object"
}
