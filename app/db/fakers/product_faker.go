package fakers

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/go-faker/faker/v4"
	"github.com/shopspring/decimal"
)

var garments = []string{"Dress", "Blazer", "Blouse", "Skirt", "Trousers", "Cardigan", "Jacket", "Scarf"}

// ProductInput builds a plausible catalog entry for category. Roughly one in
// eight products is generated out of stock.
func ProductInput(rng *rand.Rand, category string) services.ProductInput {
	word := faker.Word()
	if word == "" {
		word = "classic"
	}
	name := fmt.Sprintf("%s%s %s", strings.ToUpper(word[:1]), word[1:], garments[rng.Intn(len(garments))])

	stock := rng.Intn(25) + 1
	if rng.Intn(8) == 0 {
		stock = 0
	}
	price := fakePrice(rng)

	return services.ProductInput{
		Name:        name,
		Description: faker.Paragraph(),
		Price:       &price,
		Stock:       &stock,
		Category:    category,
		Image:       "/images/products/" + helpers.GenerateSlug(name) + ".jpg",
	}
}

// VariantInput builds a variant whose SKU is derived from the product and
// attribute names so repeated seeding stays unique per combination.
func VariantInput(rng *rand.Rand, productName string, colorID, colorName, sizeID, sizeName string) services.VariantInput {
	extra := decimal.NewFromInt(int64(rng.Intn(3) * 5))
	return services.VariantInput{
		ColorID:    &colorID,
		SizeID:     &sizeID,
		Sku:        strings.ToUpper(helpers.GenerateSlug(productName + "-" + colorName + "-" + sizeName)),
		PriceExtra: &extra,
		Stock:      rng.Intn(12),
	}
}

// fakePrice returns a price between 15.00 and 250.00 ending in .99 or .00.
func fakePrice(rng *rand.Rand) decimal.Decimal {
	whole := decimal.NewFromInt(int64(rng.Intn(236) + 15))
	if rng.Intn(2) == 0 {
		return whole.Add(decimal.RequireFromString("0.99"))
	}
	return whole
}
