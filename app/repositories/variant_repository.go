package repositories

import (
	"context"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantRepositoryImpl interface {
	Create(ctx context.Context, variant *models.ProductVariant) error
	Update(ctx context.Context, variant *models.ProductVariant) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.ProductVariant, error)
	GetBySKU(ctx context.Context, sku string) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error)
	ListLowStock(ctx context.Context) ([]models.ProductVariant, error)
	CountByColor(ctx context.Context, colorID string) (int64, error)
	CountBySize(ctx context.Context, sizeID string) (int64, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepositoryImpl {
	return &variantRepository{db}
}

func (r *variantRepository) Create(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(variant).Error
}

func (r *variantRepository) Update(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(variant).Error
}

func (r *variantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ProductVariant{}, "id = ?", id).Error
}

func (r *variantRepository) GetByID(ctx context.Context, id string) (*models.ProductVariant, error) {
	return firstOrNil[models.ProductVariant](r.db.WithContext(ctx).Preload("Color").Preload("Size"), "id = ?", id)
}

func (r *variantRepository) GetBySKU(ctx context.Context, sku string) (*models.ProductVariant, error) {
	return firstOrNil[models.ProductVariant](r.db.WithContext(ctx), "sku = ?", sku)
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Color").
		Preload("Size").
		Where("product_id = ?", productID).
		Order("sku ASC").
		Find(&variants).Error
	return variants, err
}

func (r *variantRepository) ListLowStock(ctx context.Context) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Color").
		Preload("Size").
		Where("stock <= min_stock").
		Order("stock ASC").
		Find(&variants).Error
	return variants, err
}

func (r *variantRepository) CountByColor(ctx context.Context, colorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("color_id = ?", colorID).Count(&count).Error
	return count, err
}

func (r *variantRepository) CountBySize(ctx context.Context, sizeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("size_id = ?", sizeID).Count(&count).Error
	return count, err
}
