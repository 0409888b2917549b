package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

type User struct {
	ID                        string     `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	Username                  string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email                     string     `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password                  string     `gorm:"size:255;not null" json:"-"`
	Role                      string     `gorm:"size:20;not null" json:"role"`
	VerificationCode          *string    `gorm:"size:6" json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
