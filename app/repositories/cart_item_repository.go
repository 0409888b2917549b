package repositories

import (
	"context"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemRepositoryImpl interface {
	WithTx(tx *gorm.DB) CartItemRepositoryImpl
	Add(ctx context.Context, item *models.CartItem) error
	Update(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, userID, productID string) error
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	ClearByUser(ctx context.Context, userID string) error
}

type CartItemRepository struct {
	DB *gorm.DB
}

func NewCartItemRepository(db *gorm.DB) CartItemRepositoryImpl {
	return &CartItemRepository{db}
}

func (r *CartItemRepository) WithTx(tx *gorm.DB) CartItemRepositoryImpl {
	return &CartItemRepository{tx}
}

func (r *CartItemRepository) Add(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *CartItemRepository) Update(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *CartItemRepository) Delete(ctx context.Context, userID, productID string) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *CartItemRepository) GetByUserAndProduct(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	return firstOrNil[models.CartItem](r.DB.WithContext(ctx), "user_id = ? AND product_id = ?", userID, productID)
}

func (r *CartItemRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CountByUser returns the number of units in the cart, not the number of rows.
func (r *CartItemRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *CartItemRepository) ClearByUser(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
