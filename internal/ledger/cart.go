package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"matgary/backend/internal/domain"
)

// Invoice dates use the millisecond ISO-8601 form the original data was
// stored in.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// recomputeTotal keeps the denormalized line total consistent. Every write
// path that touches price or quantity must pass through here.
func recomputeTotal(item *domain.InvoiceItem) {
	item.Total = item.Price * float64(item.Quantity)
}

// Cart assembles the line items of an in-progress sale, one line per product
// id. It is transient: never persisted, and either discarded or promoted to
// an Invoice.
type Cart struct {
	mu    sync.Mutex
	items []domain.InvoiceItem
}

func NewCart() *Cart {
	return &Cart{}
}

// AddProduct merges by product id: adding a product already in the cart
// bumps its quantity by one instead of appending a second line.
func (c *Cart) AddProduct(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			recomputeTotal(&c.items[i])
			return
		}
	}

	c.items = append(c.items, domain.InvoiceItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		Total:     p.Price,
	})
}

// SetQuantity sets a line's quantity and recomputes its total. Zero or
// negative removes the line entirely; this is the cart's only removal
// mechanism. An unknown product id is a silent no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
		c.items[i].Quantity = quantity
		recomputeTotal(&c.items[i])
		return
	}
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Total
	}
	return total
}

func (c *Cart) Items() []domain.InvoiceItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.InvoiceItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Finalize promotes the cart into a new Invoice stamped at now. Date and
// Timestamp come from the same clock read. The items are copied by value so
// later cart edits cannot reach into the saved invoice. Finalize does not
// clear the cart; the caller discards it once the invoice is safely stored.
func (c *Cart) Finalize(paymentMethod string, now time.Time) (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return domain.Invoice{}, ErrEmptyCart
	}

	items := make([]domain.InvoiceItem, len(c.items))
	copy(items, c.items)

	var total float64
	for _, item := range items {
		total += item.Total
	}

	now = now.UTC()
	return domain.Invoice{
		ID:            uuid.NewString(),
		Items:         items,
		TotalAmount:   total,
		Date:          now.Format(isoMillis),
		Timestamp:     now.UnixMilli(),
		PaymentMethod: paymentMethod,
	}, nil
}
