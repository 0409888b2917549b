package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invitation struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	Email     string    `gorm:"size:120;not null;index" json:"email"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Token     string    `gorm:"size:100;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IsValidAt reports whether the invitation can still be redeemed at now.
func (i *Invitation) IsValidAt(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}
