package service

import (
	"context"
	"math"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStockLedger_ApplyDelta(t *testing.T) {
	ctx := context.Background()

	t.Run("AddsAndRemoves", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(10, "1.00")
		ledger := NewStockLedger(memProducts{db})

		p, err := ledger.ApplyDelta(ctx, id, 5)
		require.NoError(t, err)
		require.Equal(t, 15, p.StockQuantity)

		p, err = ledger.ApplyDelta(ctx, id, -15)
		require.NoError(t, err)
		require.Equal(t, 0, p.StockQuantity)
		require.Equal(t, 0, db.stock(id))
	})

	t.Run("RejectsNegativeResult", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(2, "1.00")
		_, err := NewStockLedger(memProducts{db}).ApplyDelta(ctx, id, -3)
		require.ErrorIs(t, err, model.ErrInsufficientStock)
		require.Equal(t, 2, db.stock(id))
	})

	t.Run("RejectsZeroDelta", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(2, "1.00")
		_, err := NewStockLedger(memProducts{db}).ApplyDelta(ctx, id, 0)
		require.ErrorIs(t, err, model.ErrInvalidQuantity)
	})

	t.Run("RejectsOverflow", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(10, "1.00")
		ledger := NewStockLedger(memProducts{db})

		_, err := ledger.ApplyDelta(ctx, id, math.MaxInt)
		require.ErrorIs(t, err, model.ErrInvalidQuantity)
		require.NotErrorIs(t, err, model.ErrInsufficientStock)
		require.Equal(t, 10, db.stock(id))

		p, err := ledger.ApplyDelta(ctx, id, math.MaxInt-10)
		require.NoError(t, err)
		require.Equal(t, math.MaxInt, p.StockQuantity)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		_, err := NewStockLedger(memProducts{newMemDB()}).ApplyDelta(ctx, uuid.New(), 1)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("RetriesLostCompareAndSet", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(4, "1.00")
		db.casMisses = defaultLedgerAttempts - 1

		p, err := NewStockLedger(memProducts{db}).ApplyDelta(ctx, id, -1)
		require.NoError(t, err)
		require.Equal(t, 3, p.StockQuantity)
	})

	t.Run("GivesUpAfterAttempts", func(t *testing.T) {
		db := newMemDB()
		id := db.addProduct(4, "1.00")
		db.casMisses = defaultLedgerAttempts

		_, err := NewStockLedger(memProducts{db}).ApplyDelta(ctx, id, -1)
		require.ErrorIs(t, err, model.ErrUnavailable)
		require.Equal(t, 4, db.stock(id))
	})
}
