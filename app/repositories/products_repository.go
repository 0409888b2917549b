package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Query    string
	Category string
	Status   string
	Page     int
	PerPage  int
}

type ProductRepositoryImpl interface {
	WithTx(tx *gorm.DB) ProductRepositoryImpl
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, Pagination, error)
	GetRelated(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	CountGroupedByCategory(ctx context.Context) (map[string]int64, error)
	RenameCategory(ctx context.Context, oldName, newName string) error
	SetMainImage(ctx context.Context, productID, imageURL string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

func (p *productRepository) WithTx(tx *gorm.DB) ProductRepositoryImpl {
	return &productRepository{tx}
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (p *productRepository) Update(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (p *productRepository) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		// Invoices keep their name and price snapshot.
		if err := tx.Model(&models.InvoiceItem{}).Where("product_id = ?", id).UpdateColumn("product_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("is_main DESC, created_at ASC") }).
		Preload("Variants.Color").
		Preload("Variants.Size").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := p.db.WithContext(ctx).Model(&models.Product{})

	if keyword := strings.TrimSpace(filter.Query); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

func (p *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, Pagination, error) {
	page, perPage := NormalizePage(filter.Page, filter.PerPage)

	var total int64
	if err := p.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var products []models.Product
	err := p.filtered(ctx, filter).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset(page, perPage)).
		Find(&products).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	return products, NewPagination(page, perPage, total), nil
}

func (p *productRepository) GetRelated(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Where("category = ? AND id <> ? AND status = ?", product.Category, product.ID, models.StatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (p *productRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Where("category = ?", category).Count(&count).Error
	return count, err
}

func (p *productRepository) CountGroupedByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := p.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}

func (p *productRepository) RenameCategory(ctx context.Context, oldName, newName string) error {
	return p.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category = ?", oldName).
		UpdateColumn("category", newName).Error
}

func (p *productRepository) SetMainImage(ctx context.Context, productID, imageURL string) error {
	return p.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("image", imageURL).Error
}
