package migrations

import (
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Invitation{},
		&models.Category{},
		&models.Product{},
		&models.Color{},
		&models.Size{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
	)
}
