package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"matgary/backend/internal/domain"
	"matgary/backend/internal/kv"
	"matgary/backend/internal/service"
	"matgary/backend/internal/state"
)

// newTestAPI builds a full API over an in-memory backend so handler tests
// exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	gateway := state.NewGateway(kv.NewMemory(), zaptest.NewLogger(t))
	svc := service.New(context.Background(), gateway, "متجري", zaptest.NewLogger(t))
	return New(svc, "*", zaptest.NewLogger(t))
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createProduct(t *testing.T, handler http.Handler, name string, price float64, barcode string) domain.Product {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{
		Name:    name,
		Price:   price,
		Barcode: barcode,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var product domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	return product
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestCreateProductValidation(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{Name: "", Price: 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{Name: "Tea", Price: -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", rec.Code)
	}
}

func TestProductUpdateNotFound(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/products/ghost", domain.ProductPatch{})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutFlow(t *testing.T) {
	handler := newTestAPI(t).Handler()
	tea := createProduct(t, handler, "Tea", 10, "111")

	// Two adds merge into one line of quantity 2.
	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", domain.CartAddRequest{ProductID: tea.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("add to cart: expected 200, got %d", rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/cart", nil)
	var cart domain.CartResponse
	if err := json.NewDecoder(rec.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 || cart.Total != 20 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", domain.CheckoutRequest{PaymentMethod: domain.PaymentCash})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var invoice domain.Invoice
	if err := json.NewDecoder(rec.Body).Decode(&invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if invoice.TotalAmount != 20 {
		t.Fatalf("expected invoice total 20, got %v", invoice.TotalAmount)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/invoices", nil)
	var list domain.InvoiceListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode invoices: %v", err)
	}
	if len(list.Invoices) != 1 || list.Total != 20 {
		t.Fatalf("unexpected invoice list: %+v", list)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/sold-items", nil)
	var report struct {
		Items []domain.SoldItem `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Items) != 1 || report.Items[0].Count != 2 || report.Items[0].Value != 20 {
		t.Fatalf("unexpected sold items: %+v", report.Items)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", domain.CheckoutRequest{PaymentMethod: domain.PaymentCash})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
}

func TestCartQuantityAndClear(t *testing.T) {
	handler := newTestAPI(t).Handler()
	tea := createProduct(t, handler, "Tea", 10, "")

	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", domain.CartAddRequest{ProductID: tea.ID})

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/cart/items/"+tea.ID, domain.CartQuantityRequest{Quantity: 0})
	var cart domain.CartResponse
	if err := json.NewDecoder(rec.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected quantity 0 to remove the line, got %+v", cart.Items)
	}

	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", domain.CartAddRequest{ProductID: tea.ID})
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/cart", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for cart clear, got %d", rec.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()
	createProduct(t, handler, "Tea", 10, "111")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/scan", domain.ScanRequest{Code: "111"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var hit domain.ScanResponse
	if err := json.NewDecoder(rec.Body).Decode(&hit); err != nil {
		t.Fatalf("decode scan response: %v", err)
	}
	if !hit.Found || hit.Product == nil || hit.Product.Name != "Tea" {
		t.Fatalf("expected scan hit, got %+v", hit)
	}

	// An unknown code is a 200 miss, not an error.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/cart/scan", domain.ScanRequest{Code: "nope"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for scan miss, got %d", rec.Code)
	}
	var miss domain.ScanResponse
	if err := json.NewDecoder(rec.Body).Decode(&miss); err != nil {
		t.Fatalf("decode scan response: %v", err)
	}
	if miss.Found || miss.Product != nil {
		t.Fatalf("expected scan miss, got %+v", miss)
	}
}

func TestInvoiceDeleteAndEdit(t *testing.T) {
	handler := newTestAPI(t).Handler()
	tea := createProduct(t, handler, "Tea", 10, "")

	doJSON(t, handler, http.MethodPost, "/api/v1/cart/items", domain.CartAddRequest{ProductID: tea.ID})
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/cart/checkout", domain.CheckoutRequest{PaymentMethod: domain.PaymentInstapay})
	var invoice domain.Invoice
	if err := json.NewDecoder(rec.Body).Decode(&invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}

	qty := 4
	rec = doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/invoices/%s/items/0", invoice.ID), domain.InvoiceItemPatch{Quantity: &qty})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for item edit, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var edited domain.Invoice
	if err := json.NewDecoder(rec.Body).Decode(&edited); err != nil {
		t.Fatalf("decode edited invoice: %v", err)
	}
	if edited.Items[0].Total != 40 || edited.TotalAmount != 40 {
		t.Fatalf("expected recomputed totals, got %+v", edited)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/invoices/"+invoice.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/invoices/%s/items/0", invoice.ID), domain.InvoiceItemPatch{Quantity: &qty})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/settings", domain.SettingsUpdateRequest{AppName: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty app name, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/settings", domain.SettingsUpdateRequest{AppName: "My Shop"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/settings", nil)
	var settings domain.AppSettings
	if err := json.NewDecoder(rec.Body).Decode(&settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.AppName != "My Shop" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	handler := newTestAPI(t).Handler()
	createProduct(t, handler, "Tea", 10, "111")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/backup/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	exported := rec.Body.Bytes()

	other := newTestAPI(t).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	importRec := httptest.NewRecorder()
	other.ServeHTTP(importRec, req)
	if importRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for import, got %d (body: %s)", importRec.Code, importRec.Body.String())
	}

	rec = doJSON(t, other, http.MethodGet, "/api/v1/products", nil)
	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].Name != "Tea" {
		t.Fatalf("unexpected imported products: %+v", body.Products)
	}
}

func TestBackupImportRejectsGarbage(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader([]byte("not json at all")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for garbage import, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := doJSON(t, handler, http.MethodDelete, "/api/v1/products", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
