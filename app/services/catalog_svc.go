package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const RelatedProductsLimit = 4

type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       *int             `json:"stock" validate:"required"`
	Category    string           `json:"category" validate:"required,max=100"`
	Image       string           `json:"image" validate:"omitempty,max=500"`
}

// ProductPatch holds the fields an update may change; nil means unchanged.
type ProductPatch struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category" validate:"omitempty,min=1,max=100"`
	Image       *string          `json:"image" validate:"omitempty,max=500"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type ProductDetail struct {
	Product *models.Product  `json:"product"`
	Related []models.Product `json:"related_products"`
}

type CatalogService struct {
	db           *gorm.DB
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewCatalogService(
	db *gorm.DB,
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	m *metrics.Metrics,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		metrics:      m,
		log:          log,
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return NewValidationError("price", "must have at most 2 decimal places")
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" || in.Price == nil || in.Stock == nil {
		return nil, NewValidationError("", "name, category, price and stock are required")
	}
	if err := validatePrice(*in.Price); err != nil {
		return nil, err
	}
	if err := validateStock(*in.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Stock:       *in.Stock,
		Category:    category,
		Image:       strings.TrimSpace(in.Image),
		Status:      models.DeriveStatus(*in.Stock),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.metrics.CatalogOperation("product", "create")
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("status", product.Status))
	return product, nil
}

func (s *CatalogService) getProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		if err := validateStock(*patch.Stock); err != nil {
			return nil, err
		}
		product.Stock = *patch.Stock
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return nil, NewValidationError("category", "must not be empty")
		}
		product.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Image != nil {
		product.Image = strings.TrimSpace(*patch.Image)
	}
	product.Status = models.DeriveStatus(product.Stock)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.metrics.CatalogOperation("product", "update")
	return product, nil
}

func (s *CatalogService) SetStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	return s.UpdateProduct(ctx, id, ProductPatch{Stock: &stock})
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.getProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.metrics.CatalogOperation("product", "delete")
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.GetRelated(ctx, product, RelatedProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}
	return &ProductDetail{Product: product, Related: related}, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, repositories.Pagination, error) {
	products, page, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, repositories.Pagination{}, fmt.Errorf("failed to list products: %w", err)
	}
	return products, page, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, onlyActive bool) ([]models.CategoryWithCount, error) {
	categories, err := s.categoryRepo.GetAll(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	counts, err := s.productRepo.CountGroupedByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}

	result := make([]models.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		result = append(result, models.CategoryWithCount{Category: c, ProductCount: counts[c.Name]})
	}
	return result, nil
}

func (s *CatalogService) ensureUniqueCategoryName(ctx context.Context, name, exceptID string) error {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return fmt.Errorf("%w: category %q", ErrDuplicateName, name)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if err := s.ensureUniqueCategoryName(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusActive,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.metrics.CatalogOperation("category", "create")
	return category, nil
}

func (s *CatalogService) getCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// UpdateCategory renames a category and moves its products along with it.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if err := s.ensureUniqueCategoryName(ctx, name, category.ID); err != nil {
		return nil, err
	}

	oldName := category.Name
	category.Name = name
	category.Description = strings.TrimSpace(in.Description)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryRepo.WithTx(tx).Update(ctx, category); err != nil {
			return err
		}
		if oldName != name {
			return s.productRepo.WithTx(tx).RenameCategory(ctx, oldName, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.metrics.CatalogOperation("category", "update")
	return category, nil
}

func (s *CatalogService) ToggleCategoryStatus(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if category.Status == models.StatusActive {
		category.Status = models.StatusInactive
	} else {
		category.Status = models.StatusActive
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to toggle category status: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product is filed under.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, category.Name)
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d product(s) are filed under %q", ErrCategoryInUse, count, category.Name)
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.metrics.CatalogOperation("category", "delete")
	return nil
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
