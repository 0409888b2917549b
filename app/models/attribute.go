package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultHexCode = "#6c757d"

type Color struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	HexCode   string    `gorm:"size:7;not null" json:"hex_code"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Color) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.HexCode == "" {
		c.HexCode = DefaultHexCode
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	return nil
}

type Size struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	Name      string    `gorm:"size:20;not null;uniqueIndex" json:"name"`
	Category  string    `gorm:"size:50" json:"category"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Size) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	return nil
}
