// internal/domain/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
)

var (
	// ErrProductNotFound is returned when a product or variant does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrProductInactive is returned when a product exists but is not sellable
	ErrProductInactive = errors.New("product is not available for sale")
)

// Product is the catalog's answer for a sellable item. UnitPrice is in
// cents and reflects the price at lookup time; cart lines snapshot it.
type Product struct {
	ProductID   uint
	VariantID   *uint
	Name        string
	SKU         string
	UnitPrice   int64
	WeightGrams int
	MaxPerLine  int
	Active      bool
}

// Service provides read access to the product catalog. Catalog storage is
// owned by another system; this boundary answers only what cart and
// checkout need to validate and price lines.
type Service interface {
	Product(ctx context.Context, productID uint, variantID *uint) (*Product, error)
}
