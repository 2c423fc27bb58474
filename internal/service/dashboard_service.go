package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

type DailyActivity struct {
	Day      int             `json:"day"`
	Count    int             `json:"count"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*repository.ProductStats, error)
	GetMonthlyActivity(ctx context.Context, month, year int) ([]DailyActivity, error)
}

type statsReader interface {
	GetStats(ctx context.Context, lowStockThreshold int) (*repository.ProductStats, error)
}

type dashboardService struct {
	products statsReader
	query    TransactionQueryService
	loc      *time.Location
	lowStock int
}

func NewDashboardService(products statsReader, query TransactionQueryService, loc *time.Location, lowStockThreshold int) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{products: products, query: query, loc: loc, lowStock: lowStockThreshold}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.ProductStats, error) {
	return s.products.GetStats(ctx, s.lowStock)
}

// GetMonthlyActivity buckets the month's transactions per calendar day.
// Cancelled transactions never happened and are left out.
func (s *dashboardService) GetMonthlyActivity(ctx context.Context, month, year int) ([]DailyActivity, error) {
	txs, err := s.query.ListByMonthYear(ctx, month, year)
	if err != nil {
		return nil, err
	}

	days := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, s.loc).Day()
	activity := make([]DailyActivity, days)
	for i := range activity {
		activity[i] = DailyActivity{Day: i + 1, Amount: decimal.Zero}
	}
	for _, tx := range txs {
		if tx.Status == model.StatusCancelled {
			continue
		}
		d := &activity[tx.CreatedAt.In(s.loc).Day()-1]
		d.Count++
		d.Quantity += tx.Quantity
		d.Amount = d.Amount.Add(tx.TotalPrice)
	}
	return activity, nil
}
