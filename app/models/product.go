package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          string           `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int              `gorm:"not null" json:"stock"`
	Category    string           `gorm:"size:100;index" json:"category"`
	Image       string           `gorm:"size:500" json:"image"`
	Status      string           `gorm:"size:20;not null;index" json:"status"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave keeps Status in line with Stock no matter what the caller set.
func (p *Product) BeforeSave(tx *gorm.DB) (err error) {
	p.Status = DeriveStatus(p.Stock)
	return nil
}
