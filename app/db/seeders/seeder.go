package seeders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Rakhulsr/fashion-boutique/app/db/fakers"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"go.uber.org/zap"
)

var defaultCategories = []services.CategoryInput{
	{Name: "Dresses", Description: "Day and evening dresses"},
	{Name: "Outerwear", Description: "Jackets, blazers and coats"},
	{Name: "Tops", Description: "Blouses, shirts and knitwear"},
	{Name: "Accessories", Description: "Scarves, belts and bags"},
}

var defaultColors = []services.ColorInput{
	{Name: "Black", HexCode: "#000000"},
	{Name: "Ivory", HexCode: "#fffff0"},
	{Name: "Navy", HexCode: "#000080"},
	{Name: "Burgundy", HexCode: "#800020"},
}

var defaultSizes = []services.SizeInput{
	{Name: "XS", Category: "Clothing"},
	{Name: "S", Category: "Clothing"},
	{Name: "M", Category: "Clothing"},
	{Name: "L", Category: "Clothing"},
	{Name: "XL", Category: "Clothing"},
}

// Seeder fills an empty catalog with demo data through the regular services,
// so seeded rows obey the same rules as rows created through the API.
type Seeder struct {
	catalog    *services.CatalogService
	attributes *services.AttributeService
	rng        *rand.Rand
	log        *zap.Logger
}

func New(catalog *services.CatalogService, attributes *services.AttributeService, seed int64, log *zap.Logger) *Seeder {
	return &Seeder{
		catalog:    catalog,
		attributes: attributes,
		rng:        rand.New(rand.NewSource(seed)),
		log:        log,
	}
}

// DBSeed creates the default categories, colors and sizes, then
// productsPerCategory products per category with two variants each.
// Attributes that already exist are reused.
func (s *Seeder) DBSeed(ctx context.Context, productsPerCategory int) error {
	for _, in := range defaultCategories {
		if _, err := s.catalog.CreateCategory(ctx, in); err != nil && !errors.Is(err, services.ErrDuplicateName) {
			return fmt.Errorf("seed category %s: %w", in.Name, err)
		}
	}
	for _, in := range defaultColors {
		if _, err := s.attributes.CreateColor(ctx, in); err != nil && !errors.Is(err, services.ErrDuplicateName) {
			return fmt.Errorf("seed color %s: %w", in.Name, err)
		}
	}
	for _, in := range defaultSizes {
		if _, err := s.attributes.CreateSize(ctx, in); err != nil && !errors.Is(err, services.ErrDuplicateName) {
			return fmt.Errorf("seed size %s: %w", in.Name, err)
		}
	}

	colors, err := s.attributes.ListColors(ctx, true)
	if err != nil {
		return err
	}
	sizes, err := s.attributes.ListSizes(ctx, true)
	if err != nil {
		return err
	}

	created := 0
	for _, category := range defaultCategories {
		for i := 0; i < productsPerCategory; i++ {
			product, err := s.catalog.CreateProduct(ctx, fakers.ProductInput(s.rng, category.Name))
			if err != nil {
				return fmt.Errorf("seed product: %w", err)
			}
			created++
			if err := s.seedVariants(ctx, product, colors, sizes); err != nil {
				return err
			}
		}
	}

	s.log.Info("database seeded",
		zap.Int("categories", len(defaultCategories)),
		zap.Int("products", created),
	)
	return nil
}

func (s *Seeder) seedVariants(ctx context.Context, product *models.Product, colors []models.Color, sizes []models.Size) error {
	if len(colors) == 0 || len(sizes) == 0 {
		return nil
	}
	color := colors[s.rng.Intn(len(colors))]
	for _, size := range pickTwo(s.rng, sizes) {
		in := fakers.VariantInput(s.rng, product.Name+"-"+product.ID[:8], color.ID, color.Name, size.ID, size.Name)
		if _, err := s.attributes.CreateVariant(ctx, product.ID, in); err != nil && !errors.Is(err, services.ErrDuplicateSKU) {
			return fmt.Errorf("seed variant %s: %w", in.Sku, err)
		}
	}
	return nil
}

func pickTwo(rng *rand.Rand, sizes []models.Size) []models.Size {
	if len(sizes) < 2 {
		return sizes
	}
	first := rng.Intn(len(sizes))
	second := (first + 1 + rng.Intn(len(sizes)-1)) % len(sizes)
	return []models.Size{sizes[first], sizes[second]}
}
