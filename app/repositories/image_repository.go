package repositories

import (
	"context"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
)

type ImageRepositoryImpl interface {
	WithTx(tx *gorm.DB) ImageRepositoryImpl
	Create(ctx context.Context, image *models.ProductImage) error
	GetByID(ctx context.Context, id string) (*models.ProductImage, error)
	ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error)
	Delete(ctx context.Context, id string) error
	MarkMain(ctx context.Context, productID, imageID string) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepositoryImpl {
	return &imageRepository{db}
}

func (r *imageRepository) WithTx(tx *gorm.DB) ImageRepositoryImpl {
	return &imageRepository{tx}
}

func (r *imageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) GetByID(ctx context.Context, id string) (*models.ProductImage, error) {
	return firstOrNil[models.ProductImage](r.db.WithContext(ctx), "id = ?", id)
}

func (r *imageRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_main DESC, created_at ASC").
		Find(&images).Error
	return images, err
}

func (r *imageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id).Error
}

// MarkMain flags imageID as the only main image of productID.
func (r *imageRepository) MarkMain(ctx context.Context, productID, imageID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		UpdateColumn("is_main", false).Error; err != nil {
		return err
	}
	return db.Model(&models.ProductImage{}).
		Where("id = ? AND product_id = ?", imageID, productID).
		UpdateColumn("is_main", true).Error
}
