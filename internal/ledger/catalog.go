package ledger

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"matgary/backend/internal/domain"
)

// Catalog owns the set of sellable products in insertion order. Products are
// only ever added or edited; there is no delete operation. Saved invoices
// hold denormalized copies of name and price, so catalog edits never rewrite
// history.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}

// Add validates and appends a new product with a fresh opaque id.
func (c *Catalog) Add(name string, price float64, barcode string) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if !validPrice(price) {
		return domain.Product{}, fmt.Errorf("%w: price must be a positive number", ErrValidation)
	}

	product := domain.Product{
		ID:      uuid.NewString(),
		Name:    name,
		Price:   price,
		Barcode: barcode,
	}

	c.mu.Lock()
	c.products = append(c.products, product)
	c.mu.Unlock()

	return product, nil
}

// Update applies a partial patch to an existing product. Patched fields are
// held to the same rules as Add.
func (c *Catalog) Update(id string, patch domain.ProductPatch) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ID != id {
			continue
		}

		updated := c.products[i]
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domain.Product{}, fmt.Errorf("%w: product name is required", ErrValidation)
			}
			updated.Name = name
		}
		if patch.Price != nil {
			if !validPrice(*patch.Price) {
				return domain.Product{}, fmt.Errorf("%w: price must be a positive number", ErrValidation)
			}
			updated.Price = *patch.Price
		}
		if patch.Barcode != nil {
			updated.Barcode = *patch.Barcode
		}

		c.products[i] = updated
		return updated, nil
	}

	return domain.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
}

// FindByBarcode returns the first product whose barcode matches the scanned
// code. Barcodes are not unique by construction; first match wins. A miss is
// a normal outcome, not an error.
func (c *Catalog) FindByBarcode(code string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.Barcode == code {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (c *Catalog) FindByID(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// List returns a copy of the catalog in insertion order.
func (c *Catalog) List() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]domain.Product, len(c.products))
	copy(products, c.products)
	return products
}

// Replace swaps the whole collection, used by startup load and snapshot
// import.
func (c *Catalog) Replace(products []domain.Product) {
	next := make([]domain.Product, len(products))
	copy(next, products)

	c.mu.Lock()
	c.products = next
	c.mu.Unlock()
}
