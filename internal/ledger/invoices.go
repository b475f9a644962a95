package ledger

import (
	"fmt"
	"sync"

	"matgary/backend/internal/domain"
)

// InvoiceBook owns the durable collection of finalized invoices, kept
// newest-first.
type InvoiceBook struct {
	mu       sync.RWMutex
	invoices []domain.Invoice
}

func NewInvoiceBook() *InvoiceBook {
	return &InvoiceBook{}
}

// Append prepends the invoice, keeping the newest sale first.
func (b *InvoiceBook) Append(inv domain.Invoice) {
	b.mu.Lock()
	b.invoices = append([]domain.Invoice{cloneInvoice(inv)}, b.invoices...)
	b.mu.Unlock()
}

// Delete removes the invoice with the given id. Deleting an unknown id is a
// no-op; callers are expected to have confirmed the deletion beforehand.
func (b *InvoiceBook) Delete(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.invoices {
		if b.invoices[i].ID == id {
			b.invoices = append(b.invoices[:i], b.invoices[i+1:]...)
			return
		}
	}
}

// Update replaces the invoice's items wholesale. Every line total and the
// invoice total are recomputed; the stored derived values in the incoming
// items are never trusted.
func (b *InvoiceBook) Update(id string, items []domain.InvoiceItem) (domain.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.invoices {
		if b.invoices[i].ID != id {
			continue
		}

		next := make([]domain.InvoiceItem, len(items))
		copy(next, items)

		var total float64
		for j := range next {
			recomputeTotal(&next[j])
			total += next[j].Total
		}

		b.invoices[i].Items = next
		b.invoices[i].TotalAmount = total
		return cloneInvoice(b.invoices[i]), nil
	}

	return domain.Invoice{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
}

// UpdateItem patches one line of a saved invoice and recomputes the line
// total, then the invoice total. A quantity of zero or below is kept as-is:
// unlike the cart, editing history never auto-removes a line.
func (b *InvoiceBook) UpdateItem(invoiceID string, index int, patch domain.InvoiceItemPatch) (domain.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.invoices {
		if b.invoices[i].ID != invoiceID {
			continue
		}
		if index < 0 || index >= len(b.invoices[i].Items) {
			return domain.Invoice{}, fmt.Errorf("%w: item %d of invoice %s", ErrNotFound, index, invoiceID)
		}

		item := &b.invoices[i].Items[index]
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		recomputeTotal(item)

		var total float64
		for _, it := range b.invoices[i].Items {
			total += it.Total
		}
		b.invoices[i].TotalAmount = total
		return cloneInvoice(b.invoices[i]), nil
	}

	return domain.Invoice{}, fmt.Errorf("%w: invoice %s", ErrNotFound, invoiceID)
}

// List returns a copy of the invoices, newest-first.
func (b *InvoiceBook) List() []domain.Invoice {
	b.mu.RLock()
	defer b.mu.RUnlock()

	invoices := make([]domain.Invoice, len(b.invoices))
	for i, inv := range b.invoices {
		invoices[i] = cloneInvoice(inv)
	}
	return invoices
}

// Replace swaps the whole collection, used by startup load and snapshot
// import.
func (b *InvoiceBook) Replace(invoices []domain.Invoice) {
	next := make([]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		next[i] = cloneInvoice(inv)
	}

	b.mu.Lock()
	b.invoices = next
	b.mu.Unlock()
}

// Total sums totalAmount across all invoices.
func (b *InvoiceBook) Total() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total float64
	for _, inv := range b.invoices {
		total += inv.TotalAmount
	}
	return total
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	items := make([]domain.InvoiceItem, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	return inv
}
