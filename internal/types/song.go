package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Song struct {
	gorm.Model

	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	Artist          string    `gorm:"not null;column:artist" json:"artist"`
	AudioURL        string    `gorm:"not null;column:audio_url" json:"audioURL"`
	CoverURL        string    `gorm:"column:cover_url" json:"coverURL,omitempty"`
	DurationSeconds int       `gorm:"column:duration_seconds" json:"durationSeconds"`
	PlayCount       int64     `gorm:"not null;default:0;column:play_count" json:"playCount"`
	LikeCount       int64     `gorm:"not null;default:0;column:like_count" json:"likeCount"`
	Published       bool      `gorm:"not null;default:true;column:published" json:"published"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Song) TableName() string {
	return "song"
}
