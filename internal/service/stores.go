package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStore is the slice of product storage the stock ledger needs.
type ProductStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ConditionalUpdateQuantity(ctx context.Context, id uuid.UUID, expected, next int) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionJournal is the durable record of ledger entries.
type TransactionJournal interface {
	Insert(ctx context.Context, tx *model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, updatedBy string) (bool, error)
	Query(ctx context.Context, filter repository.TransactionFilter, page, size int) ([]model.Transaction, int64, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}

type SupplierLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Stores bundles the collaborators one ledger operation touches.
type Stores struct {
	Products     ProductStore
	Transactions TransactionJournal
	Suppliers    SupplierLookup
}

// UnitOfWork hands out stores, either plain or bound to one atomic store
// transaction. RunInTx commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Stores() Stores
	RunInTx(ctx context.Context, fn func(Stores) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Stores() Stores {
	return Stores{
		Products:     repository.NewProductRepo(u.db),
		Transactions: repository.NewTransactionRepo(u.db),
		Suppliers:    repository.NewSupplierRepo(u.db),
	}
}

func (u *gormUnitOfWork) RunInTx(ctx context.Context, fn func(Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Products:     repository.NewProductRepoForUpdate(tx),
			Transactions: repository.NewTransactionRepo(tx),
			Suppliers:    repository.NewSupplierRepo(tx),
		})
	})
}
