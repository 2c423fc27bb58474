package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

const MaxPageSize = 100

// Page is one slice of the transaction history, newest first.
type Page struct {
	Items      []model.Transaction `json:"items"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
	TotalItems int64               `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
}

type TransactionQueryService interface {
	List(ctx context.Context, page, size int, filter repository.TransactionFilter) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// ListByMonthYear returns transactions created in the given calendar
	// month, evaluated in the service's location.
	ListByMonthYear(ctx context.Context, month, year int) ([]model.Transaction, error)
}

type transactionQueryService struct {
	journal TransactionJournal
	loc     *time.Location
	timeout time.Duration
}

func NewTransactionQueryService(journal TransactionJournal, loc *time.Location, timeout time.Duration) TransactionQueryService {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &transactionQueryService{journal: journal, loc: loc, timeout: timeout}
}

func (s *transactionQueryService) List(ctx context.Context, page, size int, filter repository.TransactionFilter) (*Page, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", model.ErrValidation)
	}
	if size < 1 || size > MaxPageSize {
		return nil, fmt.Errorf("%w: size must be between 1 and %d", model.ErrValidation, MaxPageSize)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", model.ErrValidation, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filter.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		items []model.Transaction
		total int64
		err   error
	)
	if page > math.MaxInt/size {
		// page*size would overflow the offset; no store holds that many rows.
		_, total, err = s.journal.Query(ctx, filter, 0, 1)
	} else {
		items, total, err = s.journal.Query(ctx, filter, page, size)
	}
	if err != nil {
		return nil, classify(ctx, err)
	}
	if items == nil {
		items = []model.Transaction{}
	}
	return &Page{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *transactionQueryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.journal.Get(ctx, id)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return tx, nil
}

func (s *transactionQueryService) ListByMonthYear(ctx context.Context, month, year int) ([]model.Transaction, error) {
	start, end, err := monthRange(month, year, s.loc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.journal.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if items == nil {
		items = []model.Transaction{}
	}
	return items, nil
}

// monthRange returns [first instant of month, first instant of next month).
func monthRange(month, year int, loc *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be between 1 and 12", model.ErrValidation)
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year out of range", model.ErrValidation)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}
