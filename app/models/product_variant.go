package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultMinStock = 5

type ProductVariant struct {
	ID         string          `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	ProductID  string          `gorm:"size:36;not null;index" json:"product_id"`
	ColorID    *string         `gorm:"size:36;index" json:"color_id"`
	Color      *Color          `gorm:"foreignKey:ColorID" json:"color,omitempty"`
	SizeID     *string         `gorm:"size:36;index" json:"size_id"`
	Size       *Size           `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	Sku        string          `gorm:"size:100;not null;uniqueIndex" json:"sku"`
	PriceExtra decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_extra"`
	Stock      int             `gorm:"not null" json:"stock"`
	MinStock   int             `gorm:"not null" json:"min_stock"`
	Status     string          `gorm:"size:20;not null" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

func (v *ProductVariant) BeforeSave(tx *gorm.DB) (err error) {
	v.Status = DeriveStatus(v.Stock)
	return nil
}

func (v *ProductVariant) IsLowStock() bool {
	return v.Stock <= v.MinStock
}
