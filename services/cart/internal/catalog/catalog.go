// Package catalog is the static merchandise list of the storefront.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/slug"
	"github.com/orjumedia/storefront/services/cart/internal/domain"
)

const placeholderImage = "/placeholder.svg"

// CapLimit is the most caps of one kind a single order may hold.
const CapLimit = 5

var shirtSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// Product is one catalog entry. Price is in the reference currency.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Sizes       []string
	// MaxPerOrder caps the quantity of a single add; zero means no limit.
	MaxPerOrder int
}

func shirt(name, price, description string) Product {
	return Product{
		ID:          slug.Generate(name),
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		ImageURL:    placeholderImage,
		Sizes:       shirtSizes,
	}
}

func hat(name, price, description string) Product {
	return Product{
		ID:          slug.Generate(name),
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		ImageURL:    placeholderImage,
		MaxPerOrder: CapLimit,
	}
}

var products = []Product{
	shirt("Orju T-Shirt", "25", "High-quality cotton t-shirt with Orju Media branding."),
	shirt("Diary Shirt Powder Blue", "27", "Powder blue t-shirt with Diary logo."),
	shirt("Diary Shirt Peach", "27", "Peach t-shirt with Diary logo."),
	shirt("Diary Shirt Black", "27", "Black t-shirt with Diary logo."),
	hat("Orju Cap", "18", "Classic cap with embroidered Orju Media logo."),
	hat("Diary Baseball Cap Blue", "20", "Blue baseball cap with Diary logo."),
	hat("Diary Baseball Cap Navy Blue", "20", "Navy blue baseball cap with Diary logo."),
	hat("Diary Baseball Cap Black", "20", "Black baseball cap with Diary logo."),
	hat("Diary Denim Cap Dark Gray", "22", "Denim cap in dark gray with Diary logo."),
	hat("Diary Denim Cap Light Gray", "22", "Denim cap in light gray with Diary logo."),
}

// All returns every product in display order.
func All() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Find looks a product up by id.
func Find(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// LineItem builds a cart line for the product. Sized products need one of
// their sizes; unsized products take none. A quantity below 1 counts as 1.
func LineItem(id, size string, quantity int) (domain.LineItem, error) {
	p, ok := Find(id)
	if !ok {
		return domain.LineItem{}, apperrors.InvalidInput(fmt.Sprintf("Unknown product %q", id))
	}

	size = strings.ToUpper(strings.TrimSpace(size))
	switch {
	case len(p.Sizes) > 0 && size == "":
		return domain.LineItem{}, apperrors.InvalidInput(
			fmt.Sprintf("%s needs a size (%s)", p.Name, strings.Join(p.Sizes, ", ")))
	case len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size):
		return domain.LineItem{}, apperrors.InvalidInput(fmt.Sprintf("%s has no size %s", p.Name, size))
	case len(p.Sizes) == 0 && size != "":
		return domain.LineItem{}, apperrors.InvalidInput(fmt.Sprintf("%s comes in one size", p.Name))
	}

	quantity = max(1, quantity)
	if p.MaxPerOrder > 0 && quantity > p.MaxPerOrder {
		return domain.LineItem{}, apperrors.InvalidInput(
			fmt.Sprintf("At most %d of %s per order", p.MaxPerOrder, p.Name))
	}

	return domain.LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Sizes:       slices.Clone(p.Sizes),
		Size:        size,
		Quantity:    quantity,
	}, nil
}
