package service

import (
	"context"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	threshold int
}

func (s *stubStats) GetStats(_ context.Context, threshold int) (*repository.ProductStats, error) {
	s.threshold = threshold
	return &repository.ProductStats{TotalProducts: 3, LowStockCount: 1, TotalValuation: decimal.NewFromInt(42)}, nil
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	ids := seedTransactions(db,
		time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC),
	)
	db.mu.Lock()
	cancelled := db.txs[ids[2]]
	cancelled.Status = model.StatusCancelled
	db.txs[ids[2]] = cancelled
	db.mu.Unlock()

	stats := &stubStats{}
	query := NewTransactionQueryService(memJournal{db}, time.UTC, time.Second)
	svc := NewDashboardService(stats, query, time.UTC, 10)

	t.Run("Stats", func(t *testing.T) {
		got, err := svc.GetDashboardStats(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 3, got.TotalProducts)
		require.Equal(t, 10, stats.threshold)
	})

	t.Run("MonthlyActivity", func(t *testing.T) {
		days, err := svc.GetMonthlyActivity(ctx, 2, 2024)
		require.NoError(t, err)
		require.Len(t, days, 29)

		require.Equal(t, 1, days[0].Day)
		require.Equal(t, 2, days[0].Count)
		require.Equal(t, 3, days[0].Quantity)
		require.True(t, decimal.NewFromInt(6).Equal(days[0].Amount))

		require.Equal(t, 29, days[28].Day)
		require.Zero(t, days[28].Count)
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		_, err := svc.GetMonthlyActivity(ctx, 0, 2024)
		require.ErrorIs(t, err, model.ErrValidation)
	})
}
