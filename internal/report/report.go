// Package report derives read-only sales views from the invoice history.
// Every function is pure: it walks the invoice list as stored (newest-first)
// and owns no state of its own.
package report

import "matgary/backend/internal/domain"

// GrandTotalLabel names the synthetic terminal row of the exported sales
// table.
const GrandTotalLabel = "الإجمالي العام"

// SoldItems groups all invoice lines by product id, in order of first
// appearance. The displayed name is the first-seen denormalized name; counts
// and values are plain sums, so iteration order only affects labels.
func SoldItems(invoices []domain.Invoice) []domain.SoldItem {
	index := make(map[string]int)
	items := make([]domain.SoldItem, 0)

	for _, inv := range invoices {
		for _, line := range inv.Items {
			i, ok := index[line.ProductID]
			if !ok {
				i = len(items)
				index[line.ProductID] = i
				items = append(items, domain.SoldItem{
					ProductID: line.ProductID,
					Name:      line.Name,
				})
			}
			items[i].Count += line.Quantity
			items[i].Value += line.Total
		}
	}

	return items
}

// SalesByName groups lines by item NAME, in order of first appearance. This
// is deliberately coarser than SoldItems: two products sharing a name are
// merged here (the export wants label-level rows) but stay separate in the
// per-product view.
func SalesByName(invoices []domain.Invoice) []domain.SalesRow {
	index := make(map[string]int)
	rows := make([]domain.SalesRow, 0)

	for _, inv := range invoices {
		for _, line := range inv.Items {
			i, ok := index[line.Name]
			if !ok {
				i = len(rows)
				index[line.Name] = i
				rows = append(rows, domain.SalesRow{ItemName: line.Name})
			}
			rows[i].QuantitySold += line.Quantity
			rows[i].TotalValue += line.Total
		}
	}

	return rows
}

// GrandTotal sums every line total across all invoices.
func GrandTotal(invoices []domain.Invoice) float64 {
	var total float64
	for _, inv := range invoices {
		for _, line := range inv.Items {
			total += line.Total
		}
	}
	return total
}

// InvoicesTotal sums the stored totalAmount of every invoice.
func InvoicesTotal(invoices []domain.Invoice) float64 {
	var total float64
	for _, inv := range invoices {
		total += inv.TotalAmount
	}
	return total
}

// SalesTable is the flattened spreadsheet export: the by-name rows followed
// by one grand-total row whose quantity is a placeholder zero. Byte-level
// spreadsheet generation is the caller's concern.
func SalesTable(invoices []domain.Invoice) []domain.SalesRow {
	rows := SalesByName(invoices)
	return append(rows, domain.SalesRow{
		ItemName:     GrandTotalLabel,
		QuantitySold: 0,
		TotalValue:   GrandTotal(invoices),
	})
}
