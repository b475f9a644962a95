package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"matgary/backend/internal/domain"
	"matgary/backend/internal/ledger"
	"matgary/backend/internal/report"
	"matgary/backend/internal/state"
)

// Service wires the ledger components to the persistence gateway. Every
// catalog, invoice, and settings mutation writes through the gateway before
// returning; the cart is transient and never persisted.
type Service struct {
	catalog  *ledger.Catalog
	cart     *ledger.Cart
	invoices *ledger.InvoiceBook
	gateway  *state.Gateway
	logger   *zap.Logger

	settingsMu sync.RWMutex
	settings   domain.AppSettings
}

// New loads persisted state and assembles the service. A fresh backend
// yields an empty catalog, no invoices, and settings defaulted to
// defaultAppName.
func New(ctx context.Context, gateway *state.Gateway, defaultAppName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultAppName == "" {
		defaultAppName = "متجري"
	}

	products, invoices, settings := gateway.Load(ctx, domain.AppSettings{AppName: defaultAppName})

	catalog := ledger.NewCatalog()
	catalog.Replace(products)
	book := ledger.NewInvoiceBook()
	book.Replace(invoices)

	logger.Info("state loaded",
		zap.Int("products", len(products)),
		zap.Int("invoices", len(invoices)),
		zap.String("app_name", settings.AppName),
	)

	return &Service{
		catalog:  catalog,
		cart:     ledger.NewCart(),
		invoices: book,
		gateway:  gateway,
		logger:   logger,
		settings: settings,
	}
}

// --- catalog ---

func (s *Service) ListProducts() []domain.Product {
	return s.catalog.List()
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	product, err := s.catalog.Add(req.Name, req.Price, req.Barcode)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.gateway.SaveProducts(ctx, s.catalog.List()); err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("product created", zap.String("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	product, err := s.catalog.Update(id, patch)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.gateway.SaveProducts(ctx, s.catalog.List()); err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("product updated", zap.String("id", product.ID))
	return product, nil
}

// --- cart ---

func (s *Service) CartItems() []domain.InvoiceItem {
	return s.cart.Items()
}

func (s *Service) CartTotal() float64 {
	return s.cart.Total()
}

// AddToCart looks the product up by id and merges it into the cart.
func (s *Service) AddToCart(productID string) error {
	product, ok := s.catalog.FindByID(productID)
	if !ok {
		return fmt.Errorf("%w: product %s", ledger.ErrNotFound, productID)
	}
	s.cart.AddProduct(product)
	return nil
}

func (s *Service) SetCartQuantity(productID string, quantity int) {
	s.cart.SetQuantity(productID, quantity)
}

func (s *Service) ClearCart() {
	s.cart.Clear()
}

// Scan resolves a decoded barcode string against the catalog and, on a hit,
// merges the product into the cart. An empty code means the capture was
// cancelled; both that and an unknown code are normal misses, not errors.
func (s *Service) Scan(code string) (domain.Product, bool) {
	if strings.TrimSpace(code) == "" {
		return domain.Product{}, false
	}

	product, ok := s.catalog.FindByBarcode(code)
	if !ok {
		s.logger.Info("scan miss", zap.String("code", code))
		return domain.Product{}, false
	}

	s.cart.AddProduct(product)
	return product, true
}

// Checkout finalizes the cart into an invoice, stores it, and clears the
// cart only after the invoice has been persisted.
func (s *Service) Checkout(ctx context.Context, paymentMethod string) (domain.Invoice, error) {
	if paymentMethod == "" {
		paymentMethod = domain.PaymentCash
	}
	if paymentMethod != domain.PaymentCash && paymentMethod != domain.PaymentInstapay {
		return domain.Invoice{}, fmt.Errorf("%w: unknown payment method %q", ledger.ErrValidation, paymentMethod)
	}

	invoice, err := s.cart.Finalize(paymentMethod, time.Now())
	if err != nil {
		return domain.Invoice{}, err
	}

	s.invoices.Append(invoice)
	if err := s.gateway.SaveInvoices(ctx, s.invoices.List()); err != nil {
		return domain.Invoice{}, err
	}
	s.cart.Clear()

	s.logger.Info("invoice saved",
		zap.String("id", invoice.ID),
		zap.Float64("total", invoice.TotalAmount),
		zap.String("payment_method", paymentMethod),
	)
	return invoice, nil
}

// --- invoices ---

func (s *Service) ListInvoices() []domain.Invoice {
	return s.invoices.List()
}

func (s *Service) InvoicesTotal() float64 {
	return s.invoices.Total()
}

// DeleteInvoice removes an invoice. An unknown id is a no-op, not an error;
// obtaining confirmation beforehand is the caller's responsibility.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	s.invoices.Delete(id)
	if err := s.gateway.SaveInvoices(ctx, s.invoices.List()); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("id", id))
	return nil
}

func (s *Service) UpdateInvoiceItems(ctx context.Context, id string, items []domain.InvoiceItem) (domain.Invoice, error) {
	invoice, err := s.invoices.Update(id, items)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.gateway.SaveInvoices(ctx, s.invoices.List()); err != nil {
		return domain.Invoice{}, err
	}

	s.logger.Info("invoice updated", zap.String("id", id), zap.Float64("total", invoice.TotalAmount))
	return invoice, nil
}

func (s *Service) UpdateInvoiceItem(ctx context.Context, id string, index int, patch domain.InvoiceItemPatch) (domain.Invoice, error) {
	invoice, err := s.invoices.UpdateItem(id, index, patch)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.gateway.SaveInvoices(ctx, s.invoices.List()); err != nil {
		return domain.Invoice{}, err
	}

	s.logger.Info("invoice item updated", zap.String("id", id), zap.Int("index", index))
	return invoice, nil
}

// --- settings ---

func (s *Service) Settings() domain.AppSettings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.AppSettings, error) {
	appName := strings.TrimSpace(req.AppName)
	if appName == "" {
		return domain.AppSettings{}, fmt.Errorf("%w: app name is required", ledger.ErrValidation)
	}

	s.settingsMu.Lock()
	s.settings.AppName = appName
	settings := s.settings
	s.settingsMu.Unlock()

	if err := s.gateway.SaveSettings(ctx, settings); err != nil {
		return domain.AppSettings{}, err
	}
	return settings, nil
}

// --- reports ---

func (s *Service) SoldItems() []domain.SoldItem {
	return report.SoldItems(s.invoices.List())
}

func (s *Service) SalesTable() []domain.SalesRow {
	return report.SalesTable(s.invoices.List())
}

// --- snapshot import/export ---

// ExportSnapshot copies all three stores into a portable backup.
func (s *Service) ExportSnapshot() domain.Snapshot {
	products := s.catalog.List()
	invoices := s.invoices.List()
	settings := s.Settings()

	return domain.Snapshot{
		Products: &products,
		Invoices: &invoices,
		Settings: &settings,
	}
}

// ImportSnapshot parses a backup blob and replaces each section the blob
// carries, leaving absent sections untouched. Unknown keys are ignored. Each
// replaced section is persisted immediately.
func (s *Service) ImportSnapshot(ctx context.Context, blob []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(blob, &probe); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrImport, err)
	}
	if probe == nil {
		return fmt.Errorf("%w: snapshot must be an object", ledger.ErrImport)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrImport, err)
	}

	if snapshot.Products != nil {
		s.catalog.Replace(*snapshot.Products)
		if err := s.gateway.SaveProducts(ctx, s.catalog.List()); err != nil {
			return err
		}
	}
	if snapshot.Invoices != nil {
		s.invoices.Replace(*snapshot.Invoices)
		if err := s.gateway.SaveInvoices(ctx, s.invoices.List()); err != nil {
			return err
		}
	}
	if snapshot.Settings != nil {
		s.settingsMu.Lock()
		s.settings = *snapshot.Settings
		settings := s.settings
		s.settingsMu.Unlock()
		if err := s.gateway.SaveSettings(ctx, settings); err != nil {
			return err
		}
	}

	s.logger.Info("snapshot imported",
		zap.Bool("products", snapshot.Products != nil),
		zap.Bool("invoices", snapshot.Invoices != nil),
		zap.Bool("settings", snapshot.Settings != nil),
	)
	return nil
}
