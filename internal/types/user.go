package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan tiers. Free is the default for newly verified users.
const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanMax  = "max"
)

func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanMax:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Email           string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	DisplayName     string     `gorm:"column:display_name" json:"displayName"`
	Plan            string     `gorm:"not null;default:'free';column:plan" json:"plan"`
	PhoneNumber     *string    `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	AvatarBucketKey string     `gorm:"column:avatar_bucket_key" json:"avatarBucketKey"`
	AvatarURL       string     `gorm:"column:avatar_url" json:"avatarURL"`
	VerifiedAt      *time.Time `gorm:"column:verified_at" json:"verifiedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}
