package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OneTimeCode is the record behind a 6-digit login code. Only the digest
// of (email, code) is stored; the raw code lives in the delivery email
// and nowhere else. A record is active while it is unused and unexpired.
type OneTimeCode struct {
	gorm.Model
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`

	Email     string     `gorm:"index;not null;column:email"`
	CodeHash  string     `gorm:"uniqueIndex;not null;column:code_hash"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	TokenHash *string    `gorm:"column:token_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (OneTimeCode) TableName() string {
	return "one_time_code"
}

// Active reports whether the code can still be redeemed at the given
// instant.
func (c *OneTimeCode) Active(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
