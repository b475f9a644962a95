// Package state persists the ledger's three logical documents (products,
// invoices, settings) through a key-value backend, keeping the JSON layout
// the original app stored under the same keys.
package state

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"matgary/backend/internal/domain"
	"matgary/backend/internal/kv"
)

const (
	KeyProducts = "products"
	KeyInvoices = "invoices"
	KeySettings = "settings"
)

type Gateway struct {
	store  kv.Store
	logger *zap.Logger
}

func NewGateway(store kv.Store, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, logger: logger}
}

// Load reads all three documents. A missing, unreadable, or unparsable key
// falls back to its default (empty collections, the provided settings), so a
// damaged backend degrades to a fresh ledger instead of blocking startup.
func (g *Gateway) Load(ctx context.Context, defaultSettings domain.AppSettings) ([]domain.Product, []domain.Invoice, domain.AppSettings) {
	products := make([]domain.Product, 0)
	if raw, ok := g.read(ctx, KeyProducts); ok {
		var parsed []domain.Product
		if err := json.Unmarshal(raw, &parsed); err != nil {
			g.logger.Warn("discarding unparsable state", zap.String("key", KeyProducts), zap.Error(err))
		} else if parsed != nil {
			products = parsed
		}
	}

	invoices := make([]domain.Invoice, 0)
	if raw, ok := g.read(ctx, KeyInvoices); ok {
		var parsed []domain.Invoice
		if err := json.Unmarshal(raw, &parsed); err != nil {
			g.logger.Warn("discarding unparsable state", zap.String("key", KeyInvoices), zap.Error(err))
		} else if parsed != nil {
			invoices = parsed
		}
	}

	settings := defaultSettings
	if raw, ok := g.read(ctx, KeySettings); ok {
		var parsed domain.AppSettings
		if err := json.Unmarshal(raw, &parsed); err != nil {
			g.logger.Warn("discarding unparsable state", zap.String("key", KeySettings), zap.Error(err))
		} else {
			settings = parsed
		}
	}

	return products, invoices, settings
}

func (g *Gateway) read(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("state read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, ok
}

func (g *Gateway) SaveProducts(ctx context.Context, products []domain.Product) error {
	return g.save(ctx, KeyProducts, products)
}

func (g *Gateway) SaveInvoices(ctx context.Context, invoices []domain.Invoice) error {
	return g.save(ctx, KeyInvoices, invoices)
}

func (g *Gateway) SaveSettings(ctx context.Context, settings domain.AppSettings) error {
	return g.save(ctx, KeySettings, settings)
}

func (g *Gateway) save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := g.store.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
