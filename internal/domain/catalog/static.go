// internal/domain/catalog/static.go
package catalog

import (
	"context"
	"sync"
)

type productKey struct {
	productID uint
	variantID uint // 0 when the line has no variant
}

// StaticCatalog implements Service from a fixed product table, for tests
// and development runs without a live catalog system
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[productKey]Product
}

// NewStaticCatalog creates a catalog seeded with the given products
func NewStaticCatalog(products ...Product) *StaticCatalog {
	c := &StaticCatalog{
		products: make(map[productKey]Product, len(products)),
	}
	for _, p := range products {
		c.Add(p)
	}
	return c
}

// Add registers or replaces a product entry
func (c *StaticCatalog) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := productKey{productID: p.ProductID}
	if p.VariantID != nil {
		key.variantID = *p.VariantID
	}
	c.products[key] = p
}

// Product looks up a product by ID and optional variant
func (c *StaticCatalog) Product(ctx context.Context, productID uint, variantID *uint) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := productKey{productID: productID}
	if variantID != nil {
		key.variantID = *variantID
	}

	p, exists := c.products[key]
	if !exists {
		return nil, ErrProductNotFound
	}
	if !p.Active {
		return nil, ErrProductInactive
	}

	copy := p
	return &copy, nil
}
