package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxPurchase         TransactionType = "PURCHASE"
	TxSale             TransactionType = "SALE"
	TxReturnToSupplier TransactionType = "RETURN_TO_SUPPLIER"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxPurchase, TxSale, TxReturnToSupplier:
		return true
	}
	return false
}

// Sign is the direction the type moves stock: +1 for stock arriving, -1 for
// stock leaving the warehouse.
func (t TransactionType) Sign() int {
	if t == TxPurchase {
		return 1
	}
	return -1
}

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusCancelled  TransactionStatus = "CANCELLED"
)

// statusEdges lists every allowed transition. Terminal statuses have none.
var statusEdges = map[TransactionStatus][]TransactionStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is an edge of the status workflow.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range statusEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transaction is an immutable ledger entry; only Status (and the update audit
// columns) change after insert. It is never soft deleted.
type Transaction struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	SupplierID *uuid.UUID        `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Type       TransactionType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status     TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Quantity   int               `gorm:"not null;check:chk_transactions_quantity,quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"total_price"`

	Description string `gorm:"type:text" json:"description"`
	Note        string `gorm:"type:text" json:"note"`

	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedBy       string    `json:"created_by"`
	UpdatedBy       string    `json:"updated_by"`
	CreatedByUserID *string   `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
