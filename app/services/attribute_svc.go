package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type ColorInput struct {
	Name    string `json:"name" validate:"required,max=50"`
	HexCode string `json:"hex_code" validate:"omitempty,len=7"`
	Status  string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type SizeInput struct {
	Name     string `json:"name" validate:"required,max=20"`
	Category string `json:"category" validate:"max=50"`
	Status   string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type VariantInput struct {
	ColorID    *string          `json:"color_id"`
	SizeID     *string          `json:"size_id"`
	Sku        string           `json:"sku" validate:"required,max=100"`
	PriceExtra *decimal.Decimal `json:"price_extra"`
	Stock      int              `json:"stock" validate:"min=0"`
	MinStock   *int             `json:"min_stock" validate:"omitempty,min=0"`
}

type ImageInput struct {
	ImageURL string `json:"image_url" validate:"required,max=500"`
	IsMain   bool   `json:"is_main"`
}

// AttributeService manages colors, sizes, product variants and product images.
type AttributeService struct {
	db          *gorm.DB
	colorRepo   repositories.ColorRepositoryImpl
	sizeRepo    repositories.SizeRepositoryImpl
	variantRepo repositories.VariantRepositoryImpl
	imageRepo   repositories.ImageRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
	metrics     *metrics.Metrics
}

func NewAttributeService(
	db *gorm.DB,
	colorRepo repositories.ColorRepositoryImpl,
	sizeRepo repositories.SizeRepositoryImpl,
	variantRepo repositories.VariantRepositoryImpl,
	imageRepo repositories.ImageRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	m *metrics.Metrics,
) *AttributeService {
	return &AttributeService{
		db:          db,
		colorRepo:   colorRepo,
		sizeRepo:    sizeRepo,
		variantRepo: variantRepo,
		imageRepo:   imageRepo,
		productRepo: productRepo,
		metrics:     m,
	}
}

func (s *AttributeService) ListColors(ctx context.Context, onlyActive bool) ([]models.Color, error) {
	return s.colorRepo.GetAll(ctx, onlyActive)
}

func (s *AttributeService) applyColor(ctx context.Context, color *models.Color, in ColorInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return NewValidationError("name", "is required")
	}
	existing, err := s.colorRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check color name: %w", err)
	}
	if existing != nil && existing.ID != color.ID {
		return fmt.Errorf("%w: color %q", ErrDuplicateName, name)
	}

	hex := strings.TrimSpace(in.HexCode)
	if hex == "" {
		hex = models.DefaultHexCode
	}
	if !hexColorPattern.MatchString(hex) {
		return NewValidationError("hex_code", "must look like #a1b2c3")
	}

	color.Name = name
	color.HexCode = hex
	if in.Status != "" {
		color.Status = in.Status
	}
	if color.Status == "" {
		color.Status = models.StatusActive
	}
	return nil
}

func (s *AttributeService) CreateColor(ctx context.Context, in ColorInput) (*models.Color, error) {
	color := &models.Color{}
	if err := s.applyColor(ctx, color, in); err != nil {
		return nil, err
	}
	if err := s.colorRepo.Create(ctx, color); err != nil {
		return nil, fmt.Errorf("failed to create color: %w", err)
	}
	s.metrics.CatalogOperation("color", "create")
	return color, nil
}

func (s *AttributeService) UpdateColor(ctx context.Context, id string, in ColorInput) (*models.Color, error) {
	color, err := s.colorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load color: %w", err)
	}
	if color == nil {
		return nil, ErrNotFound
	}
	if err := s.applyColor(ctx, color, in); err != nil {
		return nil, err
	}
	if err := s.colorRepo.Update(ctx, color); err != nil {
		return nil, fmt.Errorf("failed to update color: %w", err)
	}
	return color, nil
}

func (s *AttributeService) DeleteColor(ctx context.Context, id string) error {
	color, err := s.colorRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load color: %w", err)
	}
	if color == nil {
		return ErrNotFound
	}
	count, err := s.variantRepo.CountByColor(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count color variants: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: color %q is used by %d variant(s)", ErrAttributeInUse, color.Name, count)
	}
	if err := s.colorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete color: %w", err)
	}
	s.metrics.CatalogOperation("color", "delete")
	return nil
}

func (s *AttributeService) ListSizes(ctx context.Context, onlyActive bool) ([]models.Size, error) {
	return s.sizeRepo.GetAll(ctx, onlyActive)
}

func (s *AttributeService) applySize(ctx context.Context, size *models.Size, in SizeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return NewValidationError("name", "is required")
	}
	existing, err := s.sizeRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check size name: %w", err)
	}
	if existing != nil && existing.ID != size.ID {
		return fmt.Errorf("%w: size %q", ErrDuplicateName, name)
	}

	size.Name = name
	size.Category = strings.TrimSpace(in.Category)
	if in.Status != "" {
		size.Status = in.Status
	}
	if size.Status == "" {
		size.Status = models.StatusActive
	}
	return nil
}

func (s *AttributeService) CreateSize(ctx context.Context, in SizeInput) (*models.Size, error) {
	size := &models.Size{}
	if err := s.applySize(ctx, size, in); err != nil {
		return nil, err
	}
	if err := s.sizeRepo.Create(ctx, size); err != nil {
		return nil, fmt.Errorf("failed to create size: %w", err)
	}
	s.metrics.CatalogOperation("size", "create")
	return size, nil
}

func (s *AttributeService) UpdateSize(ctx context.Context, id string, in SizeInput) (*models.Size, error) {
	size, err := s.sizeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load size: %w", err)
	}
	if size == nil {
		return nil, ErrNotFound
	}
	if err := s.applySize(ctx, size, in); err != nil {
		return nil, err
	}
	if err := s.sizeRepo.Update(ctx, size); err != nil {
		return nil, fmt.Errorf("failed to update size: %w", err)
	}
	return size, nil
}

func (s *AttributeService) DeleteSize(ctx context.Context, id string) error {
	size, err := s.sizeRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load size: %w", err)
	}
	if size == nil {
		return ErrNotFound
	}
	count, err := s.variantRepo.CountBySize(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count size variants: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: size %q is used by %d variant(s)", ErrAttributeInUse, size.Name, count)
	}
	if err := s.sizeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete size: %w", err)
	}
	s.metrics.CatalogOperation("size", "delete")
	return nil
}

func (s *AttributeService) requireProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *AttributeService) applyVariant(ctx context.Context, variant *models.ProductVariant, in VariantInput) error {
	sku := strings.TrimSpace(in.Sku)
	if sku == "" {
		return NewValidationError("sku", "is required")
	}
	if in.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	existing, err := s.variantRepo.GetBySKU(ctx, sku)
	if err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if existing != nil && existing.ID != variant.ID {
		return fmt.Errorf("%w: %q", ErrDuplicateSKU, sku)
	}

	if in.ColorID != nil && *in.ColorID != "" {
		color, err := s.colorRepo.GetByID(ctx, *in.ColorID)
		if err != nil {
			return fmt.Errorf("failed to load color: %w", err)
		}
		if color == nil {
			return NewValidationError("color_id", "unknown color")
		}
		variant.ColorID = in.ColorID
		variant.Color = color
	} else {
		variant.ColorID = nil
		variant.Color = nil
	}
	if in.SizeID != nil && *in.SizeID != "" {
		size, err := s.sizeRepo.GetByID(ctx, *in.SizeID)
		if err != nil {
			return fmt.Errorf("failed to load size: %w", err)
		}
		if size == nil {
			return NewValidationError("size_id", "unknown size")
		}
		variant.SizeID = in.SizeID
		variant.Size = size
	} else {
		variant.SizeID = nil
		variant.Size = nil
	}

	variant.Sku = sku
	variant.Stock = in.Stock
	variant.PriceExtra = decimal.Zero
	if in.PriceExtra != nil {
		if in.PriceExtra.IsNegative() {
			return NewValidationError("price_extra", "must not be negative")
		}
		variant.PriceExtra = *in.PriceExtra
	}
	if in.MinStock != nil {
		variant.MinStock = *in.MinStock
	} else if variant.ID == "" {
		variant.MinStock = models.DefaultMinStock
	}
	variant.Status = models.DeriveStatus(variant.Stock)
	return nil
}

func (s *AttributeService) ListVariants(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.variantRepo.ListByProduct(ctx, productID)
}

func (s *AttributeService) CreateVariant(ctx context.Context, productID string, in VariantInput) (*models.ProductVariant, error) {
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	variant := &models.ProductVariant{ProductID: productID}
	if err := s.applyVariant(ctx, variant, in); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Create(ctx, variant); err != nil {
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}
	s.metrics.CatalogOperation("variant", "create")
	return variant, nil
}

func (s *AttributeService) UpdateVariant(ctx context.Context, id string, in VariantInput) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return nil, ErrNotFound
	}
	if err := s.applyVariant(ctx, variant, in); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Update(ctx, variant); err != nil {
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}
	return variant, nil
}

func (s *AttributeService) DeleteVariant(ctx context.Context, id string) error {
	variant, err := s.variantRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return ErrNotFound
	}
	if err := s.variantRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	s.metrics.CatalogOperation("variant", "delete")
	return nil
}

func (s *AttributeService) LowStockVariants(ctx context.Context) ([]models.ProductVariant, error) {
	return s.variantRepo.ListLowStock(ctx)
}

func (s *AttributeService) ListImages(ctx context.Context, productID string) ([]models.ProductImage, error) {
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByProduct(ctx, productID)
}

// AddImage stores an image; the first image of a product becomes its main image.
func (s *AttributeService) AddImage(ctx context.Context, productID string, in ImageInput) (*models.ProductImage, error) {
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.ImageURL)
	if url == "" {
		return nil, NewValidationError("image_url", "is required")
	}

	existing, err := s.imageRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	image := &models.ProductImage{ProductID: productID, ImageURL: url}
	makeMain := in.IsMain || len(existing) == 0

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := s.imageRepo.WithTx(tx)
		if err := images.Create(ctx, image); err != nil {
			return err
		}
		if !makeMain {
			return nil
		}
		if err := images.MarkMain(ctx, productID, image.ID); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).SetMainImage(ctx, productID, url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add image: %w", err)
	}
	image.IsMain = makeMain
	return image, nil
}

func (s *AttributeService) SetMainImage(ctx context.Context, productID, imageID string) error {
	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	if image == nil || image.ProductID != productID {
		return ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.imageRepo.WithTx(tx).MarkMain(ctx, productID, imageID); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).SetMainImage(ctx, productID, image.ImageURL)
	})
	if err != nil {
		return fmt.Errorf("failed to set main image: %w", err)
	}
	return nil
}

// DeleteImage removes an image; when it was the main one the oldest remaining image takes over.
func (s *AttributeService) DeleteImage(ctx context.Context, productID, imageID string) error {
	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	if image == nil || image.ProductID != productID {
		return ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := s.imageRepo.WithTx(tx)
		if err := images.Delete(ctx, imageID); err != nil {
			return err
		}
		if !image.IsMain {
			return nil
		}
		remaining, err := images.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return s.productRepo.WithTx(tx).SetMainImage(ctx, productID, "")
		}
		if err := images.MarkMain(ctx, productID, remaining[0].ID); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).SetMainImage(ctx, productID, remaining[0].ImageURL)
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
