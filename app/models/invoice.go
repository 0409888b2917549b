package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoiceStatusActive = "Active"
	InvoiceStatusVoided = "Voided"
	InvoiceStatusSent   = "Sent"
)

const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentOnline   = "online"
)

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOnline:
		return true
	}
	return false
}

type Invoice struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	InvoiceDate     time.Time       `gorm:"not null;index" json:"invoice_date"`
	UserID          *string         `gorm:"size:36;index" json:"user_id"`
	CustomerName    string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerID      string          `gorm:"size:50" json:"customer_id"`
	CustomerEmail   string          `gorm:"size:120" json:"customer_email"`
	CustomerPhone   string          `gorm:"size:20" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text" json:"customer_address"`
	PaymentMethod   string          `gorm:"size:20;not null" json:"payment_method"`
	PaymentDetails  string          `gorm:"type:text" json:"payment_details"`
	CashReceived    decimal.Decimal `gorm:"type:decimal(10,2)" json:"cash_received"`
	ChangeGiven     decimal.Decimal `gorm:"type:decimal(10,2)" json:"change_given"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TotalDiscount   decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_discount"`
	Taxes           decimal.Decimal `gorm:"type:decimal(10,2)" json:"taxes"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          string          `gorm:"size:20;not null;index" json:"status"`
	EmailSent       bool            `gorm:"not null;default:false" json:"email_sent"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = InvoiceStatusActive
	}
	return nil
}

type InvoiceItem struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primaryKey" json:"id"`
	InvoiceID      string          `gorm:"size:36;not null;index" json:"invoice_id"`
	ProductID      *string         `gorm:"size:36;index" json:"product_id"`
	ProductName    string          `gorm:"size:255;not null" json:"product_name"`
	ProductPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"product_price"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Discount       decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_amount"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
