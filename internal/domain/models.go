package domain

// Payment methods accepted at checkout.
const (
	PaymentCash     = "cash"
	PaymentInstapay = "instapay"
)

// Product is a sellable catalog entry. The JSON field names are the wire and
// storage format of the original app and must stay stable so existing
// backups keep importing cleanly.
type Product struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Barcode string  `json:"barcode"`
}

type ProductCreateRequest struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Barcode string  `json:"barcode"`
}

type ProductPatch struct {
	Name    *string  `json:"name,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Barcode *string  `json:"barcode,omitempty"`
}

// InvoiceItem is one sale line. Name and price are denormalized copies taken
// from the product at the time of sale; later catalog edits never reach back
// into saved invoices. Total is derived and always equals price * quantity.
type InvoiceItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

type InvoiceItemPatch struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}

// Invoice is a finalized sale. Date is the ISO-8601 rendering of the same
// instant carried in Timestamp (epoch milliseconds); both are stamped from
// one clock read at finalization.
type Invoice struct {
	ID            string        `json:"id"`
	Items         []InvoiceItem `json:"items"`
	TotalAmount   float64       `json:"totalAmount"`
	Date          string        `json:"date"`
	Timestamp     int64         `json:"timestamp"`
	PaymentMethod string        `json:"paymentMethod"`
}

type AppSettings struct {
	AppName string `json:"appName"`
}

type SettingsUpdateRequest struct {
	AppName string `json:"appName"`
}

// Snapshot is the portable backup format. Pointer fields distinguish "absent"
// from "present but empty": a partial snapshot only replaces the sections it
// carries.
type Snapshot struct {
	Products *[]Product   `json:"products,omitempty"`
	Invoices *[]Invoice   `json:"invoices,omitempty"`
	Settings *AppSettings `json:"settings,omitempty"`
}

// SoldItem is one row of the per-product sales report, grouped by product id.
type SoldItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Value     float64 `json:"value"`
}

// SalesRow is one row of the flattened spreadsheet export, grouped by item
// name. The terminal row carries the grand total with a placeholder zero
// quantity.
type SalesRow struct {
	ItemName     string  `json:"itemName"`
	QuantitySold int     `json:"quantitySold"`
	TotalValue   float64 `json:"totalValue"`
}

type ScanRequest struct {
	Code string `json:"code"`
}

type ScanResponse struct {
	Found   bool     `json:"found"`
	Product *Product `json:"product,omitempty"`
}

type CartAddRequest struct {
	ProductID string `json:"productId"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items []InvoiceItem `json:"items"`
	Total float64       `json:"total"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type InvoiceItemsUpdateRequest struct {
	Items []InvoiceItem `json:"items"`
}

type InvoiceListResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    float64   `json:"total"`
}
