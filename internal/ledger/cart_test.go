package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matgary/backend/internal/domain"
)

var (
	tea    = domain.Product{ID: "p1", Name: "Tea", Price: 10, Barcode: "111"}
	coffee = domain.Product{ID: "p2", Name: "Coffee", Price: 25, Barcode: "222"}
)

func TestCartAddProductMergesByID(t *testing.T) {
	cart := NewCart()

	for i := 0; i < 3; i++ {
		cart.AddProduct(tea)
	}
	cart.AddProduct(coffee)

	items := cart.Items()
	require.Len(t, items, 2)

	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 30.0, items[0].Total)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 25.0, items[1].Total)

	assert.Equal(t, 55.0, cart.Total())
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(tea)

	cart.SetQuantity("p1", 5)
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 50.0, items[0].Total)
}

func TestCartSetQuantityZeroRemoves(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(tea)
	cart.AddProduct(coffee)

	cart.SetQuantity("p1", 0)
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	cart.SetQuantity("p2", -4)
	assert.Empty(t, cart.Items())
	assert.Equal(t, 0.0, cart.Total())
}

func TestCartSetQuantityUnknownIDIsNoop(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(tea)

	cart.SetQuantity("missing", 7)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCartFinalizeEmptyFails(t *testing.T) {
	cart := NewCart()
	_, err := cart.Finalize(domain.PaymentCash, time.Now())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCartFinalize(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(tea)
	cart.AddProduct(tea)

	now := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	invoice, err := cart.Finalize(domain.PaymentInstapay, now)
	require.NoError(t, err)

	assert.NotEmpty(t, invoice.ID)
	assert.Equal(t, domain.PaymentInstapay, invoice.PaymentMethod)
	assert.Equal(t, 20.0, invoice.TotalAmount)
	assert.Equal(t, now.UnixMilli(), invoice.Timestamp)
	assert.Equal(t, "2026-03-14T15:09:26.535Z", invoice.Date)

	// Date and Timestamp are stamped from the same instant.
	parsed, err := time.Parse(time.RFC3339, invoice.Date)
	require.NoError(t, err)
	assert.Equal(t, invoice.Timestamp, parsed.UnixMilli())

	// Finalize does not clear the cart; the caller does.
	assert.Equal(t, 1, cart.Len())
	cart.Clear()
	assert.Equal(t, 0, cart.Len())
}

func TestCartFinalizeDeepCopiesItems(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(tea)

	invoice, err := cart.Finalize(domain.PaymentCash, time.Now())
	require.NoError(t, err)

	// Later cart edits must never reach into the saved invoice.
	cart.AddProduct(tea)
	cart.SetQuantity("p1", 9)

	require.Len(t, invoice.Items, 1)
	assert.Equal(t, 1, invoice.Items[0].Quantity)
	assert.Equal(t, 10.0, invoice.Items[0].Total)
	assert.Equal(t, 10.0, invoice.TotalAmount)
}
