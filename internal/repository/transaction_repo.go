package repository

import (
	"context"
	"strings"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows a listing. Zero fields do not filter.
type TransactionFilter struct {
	Type   model.TransactionType
	Status model.TransactionStatus
	Search string
	// CreatedByUserID restricts to transactions recorded by one user.
	CreatedByUserID string
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx *model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, updatedBy string) (bool, error)
	Query(ctx context.Context, filter TransactionFilter, page, size int) ([]model.Transaction, int64, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Insert(ctx context.Context, tx *model.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, "insert transaction")
}

func (r *transactionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err, "transaction "+id.String())
	}
	return &tx, nil
}

// UpdateStatus moves the row from one status to another in a single
// conditional write; false means the stored status was no longer from.
func (r *transactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, translate(res.Error, "update transaction status")
	}
	return res.RowsAffected == 1, nil
}

func (r *transactionRepo) filtered(ctx context.Context, filter TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedByUserID != "" {
		q = q.Where("created_by_user_id = ?", filter.CreatedByUserID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(description) LIKE ? OR LOWER(note) LIKE ?", like, like)
	}
	return q
}

// Query returns one page ordered newest first, plus the total match count.
func (r *transactionRepo) Query(ctx context.Context, filter TransactionFilter, page, size int) ([]model.Transaction, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count transactions")
	}

	transactions := []model.Transaction{}
	err := r.filtered(ctx, filter).
		Order("created_at DESC, id DESC").
		Offset(page * size).
		Limit(size).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, translate(err, "list transactions")
	}
	return transactions, total, nil
}

// FindCreatedBetween returns transactions with start <= created_at < end,
// newest first.
func (r *transactionRepo) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	transactions := []model.Transaction{}
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Order("created_at DESC, id DESC").
		Find(&transactions).Error
	return transactions, translate(err, "transactions by period")
}
