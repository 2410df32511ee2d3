package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share link kinds.
const (
	ShareKindSong    = "song"
	ShareKindChat    = "chat"
	ShareKindProfile = "profile"
)

type ShareLink struct {
	gorm.Model

	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null;column:token" json:"token"`
	TargetURL string     `gorm:"not null;column:target_url" json:"targetURL"`
	Kind      string     `gorm:"not null;column:kind" json:"kind"`
	CreatedBy *uuid.UUID `gorm:"index;column:created_by" json:"createdBy,omitempty"`
	HitCount  int64      `gorm:"not null;default:0;column:hit_count" json:"hitCount"`
	LastHitAt *time.Time `gorm:"column:last_hit_at" json:"lastHitAt,omitempty"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (ShareLink) TableName() string {
	return "share_link"
}

// Expired reports whether the link can no longer be resolved.
func (s *ShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
