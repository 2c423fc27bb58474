package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

const (
	defaultLedgerAttempts = 5
	defaultLedgerBackoff  = 2 * time.Millisecond
)

// StockLedger applies signed quantity deltas to a product's stock with a
// compare-and-set, so stock never goes negative and concurrent writers never
// lose an update.
type StockLedger struct {
	products ProductStore
	attempts int
	backoff  time.Duration
}

func NewStockLedger(products ProductStore) *StockLedger {
	return &StockLedger{
		products: products,
		attempts: defaultLedgerAttempts,
		backoff:  defaultLedgerBackoff,
	}
}

// ApplyDelta adds delta to the product's stock and returns the product as it
// is after the write. It fails with ErrInsufficientStock when the result would
// be negative, with ErrInvalidQuantity when it would overflow, and with
// ErrUnavailable when the compare-and-set keeps losing.
func (l *StockLedger) ApplyDelta(ctx context.Context, productID uuid.UUID, delta int) (*model.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", model.ErrInvalidQuantity)
	}

	for attempt := 1; attempt <= l.attempts; attempt++ {
		product, err := l.products.Get(ctx, productID)
		if err != nil {
			return nil, err
		}

		if delta > 0 && product.StockQuantity > math.MaxInt-delta {
			return nil, fmt.Errorf("%w: adding %d to product '%s' exceeds the stock limit",
				model.ErrInvalidQuantity, delta, product.Name)
		}
		next := product.StockQuantity + delta
		if next < 0 {
			return nil, fmt.Errorf("%w: product '%s' has %d, needs %d",
				model.ErrInsufficientStock, product.Name, product.StockQuantity, -delta)
		}

		ok, err := l.products.ConditionalUpdateQuantity(ctx, productID, product.StockQuantity, next)
		if err != nil {
			return nil, err
		}
		if ok {
			product.StockQuantity = next
			return product, nil
		}

		// Lost the race or the product vanished in between.
		exists, err := l.products.Exists(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: product %s", model.ErrNotFound, productID)
		}

		if attempt < l.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.backoff * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: stock of product %s kept changing", model.ErrUnavailable, productID)
}
