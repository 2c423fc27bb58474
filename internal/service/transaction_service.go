package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultStoreTimeout = 5 * time.Second

type PurchaseRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"uuid_required"`
	SupplierID  uuid.UUID       `json:"supplier_id" validate:"uuid_required"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Description string          `json:"description" validate:"max=1000"`
	Note        string          `json:"note" validate:"max=1000"`
}

type SellRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description" validate:"max=1000"`
	Note        string    `json:"note" validate:"max=1000"`
}

type ReturnRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"uuid_required"`
	SupplierID  uuid.UUID `json:"supplier_id" validate:"uuid_required"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description" validate:"max=1000"`
	Note        string    `json:"note" validate:"max=1000"`
}

// PurchaseResult carries the recorded transaction and the product snapshot
// taken in the same store transaction.
type PurchaseResult struct {
	Transaction model.Transaction `json:"transaction"`
	Product     model.Product     `json:"product"`
}

type SaleResult struct {
	Transaction model.Transaction `json:"transaction"`
	Product     model.Product     `json:"product"`
}

type ReturnResult struct {
	Transaction model.Transaction `json:"transaction"`
	Product     model.Product     `json:"product"`
}

// StatusUpdateResult holds the transaction after the transition. Product is
// set only when the transition moved stock.
type StatusUpdateResult struct {
	Transaction model.Transaction `json:"transaction"`
	Product     *model.Product    `json:"product,omitempty"`
}

type TransactionService interface {
	RecordPurchase(ctx context.Context, actor Actor, req *PurchaseRequest) (*PurchaseResult, error)
	RecordSale(ctx context.Context, actor Actor, req *SellRequest) (*SaleResult, error)
	RecordReturnToSupplier(ctx context.Context, actor Actor, req *ReturnRequest) (*ReturnResult, error)
	UpdateTransactionStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.TransactionStatus) (*StatusUpdateResult, error)
}

type TransactionServiceConfig struct {
	Policy StockPolicy
	// Timeout bounds both waiting for the product lock and the store work.
	Timeout time.Duration
	Now     func() time.Time
}

type transactionService struct {
	uow      UnitOfWork
	notifier Notifier
	locks    *keyedMutex
	policy   StockPolicy
	timeout  time.Duration
	now      func() time.Time
}

func NewTransactionService(uow UnitOfWork, notifier Notifier, cfg TransactionServiceConfig) TransactionService {
	s := &transactionService{
		uow:      uow,
		notifier: notifierOrNoop(notifier),
		locks:    newKeyedMutex(),
		policy:   cfg.Policy,
		timeout:  cfg.Timeout,
		now:      cfg.Now,
	}
	if s.policy == "" {
		s.policy = StockOnCreate
	}
	if s.timeout <= 0 {
		s.timeout = defaultStoreTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// entry is one stock-affecting transaction about to be recorded.
type entry struct {
	txType      model.TransactionType
	productID   uuid.UUID
	supplierID  *uuid.UUID
	quantity    int
	unitPrice   *decimal.Decimal // nil: use the product's current price
	description string
	note        string
}

func (s *transactionService) RecordPurchase(ctx context.Context, actor Actor, req *PurchaseRequest) (*PurchaseResult, error) {
	if err := checkQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	supplierID, price := req.SupplierID, req.UnitPrice
	tx, product, err := s.record(ctx, actor, entry{
		txType:      model.TxPurchase,
		productID:   req.ProductID,
		supplierID:  &supplierID,
		quantity:    req.Quantity,
		unitPrice:   &price,
		description: req.Description,
		note:        req.Note,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Transaction: *tx, Product: *product}, nil
}

func (s *transactionService) RecordSale(ctx context.Context, actor Actor, req *SellRequest) (*SaleResult, error) {
	if err := checkQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	tx, product, err := s.record(ctx, actor, entry{
		txType:      model.TxSale,
		productID:   req.ProductID,
		quantity:    req.Quantity,
		description: req.Description,
		note:        req.Note,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Transaction: *tx, Product: *product}, nil
}

func (s *transactionService) RecordReturnToSupplier(ctx context.Context, actor Actor, req *ReturnRequest) (*ReturnResult, error) {
	if err := checkQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	supplierID := req.SupplierID
	tx, product, err := s.record(ctx, actor, entry{
		txType:      model.TxReturnToSupplier,
		productID:   req.ProductID,
		supplierID:  &supplierID,
		quantity:    req.Quantity,
		description: req.Description,
		note:        req.Note,
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Transaction: *tx, Product: *product}, nil
}

// record validates references, moves stock (when the policy says so) and
// inserts the transaction row, all in one store transaction held under the
// product lock.
func (s *transactionService) record(ctx context.Context, actor Actor, e entry) (*model.Transaction, *model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, classify(ctx, err)
	}
	unlock, err := s.lockProduct(ctx, e.productID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	var (
		tx      *model.Transaction
		product *model.Product
	)
	err = s.runDetached(ctx, func(runCtx context.Context, st Stores) error {
		if e.supplierID != nil {
			exists, err := st.Suppliers.Exists(runCtx, *e.supplierID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: supplier %s", model.ErrNotFound, *e.supplierID)
			}
		}

		var err error
		if s.policy.movesStockOnCreate() {
			product, err = NewStockLedger(st.Products).ApplyDelta(runCtx, e.productID, e.txType.Sign()*e.quantity)
		} else {
			product, err = st.Products.Get(runCtx, e.productID)
		}
		if err != nil {
			return err
		}

		tx = s.newTransaction(actor, e, product)
		return st.Transactions.Insert(runCtx, tx)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Publish(map[string]interface{}{
		"type":        "stock_update",
		"action":      "transaction_created",
		"transaction": transactionPayload(tx),
		"product":     productPayload(product),
		"user":        actor.payload(),
		"message": fmt.Sprintf("%s recorded %s of %d units of '%s' (%s)",
			actor.Name, tx.Type, tx.Quantity, product.Name, tx.Status),
	})
	return tx, product, nil
}

func (s *transactionService) newTransaction(actor Actor, e entry, product *model.Product) *model.Transaction {
	unitPrice := product.Price
	if e.unitPrice != nil {
		unitPrice = *e.unitPrice
	}
	now := s.now().UTC()
	return &model.Transaction{
		ID:              uuid.New(),
		ProductID:       e.productID,
		SupplierID:      e.supplierID,
		Type:            e.txType,
		Status:          s.policy.initialStatus(),
		Quantity:        e.quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(decimal.NewFromInt(int64(e.quantity))),
		Description:     e.description,
		Note:            e.note,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       actor.auditID(),
		UpdatedBy:       actor.auditID(),
		CreatedByUserID: actor.userRef(),
	}
}

func (s *transactionService) UpdateTransactionStatus(ctx context.Context, actor Actor, id uuid.UUID, status model.TransactionStatus) (*StatusUpdateResult, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(ctx, err)
	}

	movesStock := s.policy.movesStockOn(status)
	if movesStock {
		readCtx, cancel := context.WithTimeout(ctx, s.timeout)
		current, err := s.uow.Stores().Transactions.Get(readCtx, id)
		err = classify(readCtx, err)
		cancel()
		if err != nil {
			return nil, err
		}
		unlock, err := s.lockProduct(ctx, current.ProductID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var result StatusUpdateResult
	err := s.runDetached(ctx, func(runCtx context.Context, st Stores) error {
		tx, err := st.Transactions.Get(runCtx, id)
		if err != nil {
			return err
		}
		from := tx.Status
		if !from.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, status)
		}
		ok, err := st.Transactions.UpdateStatus(runCtx, id, from, status, actor.auditID())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: transaction %s is no longer %s", model.ErrInvalidTransition, id, from)
		}

		if movesStock {
			product, err := NewStockLedger(st.Products).ApplyDelta(runCtx, tx.ProductID, tx.Type.Sign()*tx.Quantity)
			if err != nil {
				return err
			}
			result.Product = product
		}

		tx.Status = status
		tx.UpdatedAt = s.now().UTC()
		tx.UpdatedBy = actor.auditID()
		result.Transaction = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"type":        "stock_update",
		"action":      "transaction_status_updated",
		"transaction": transactionPayload(&result.Transaction),
		"user":        actor.payload(),
		"message":     fmt.Sprintf("%s marked transaction %s as %s", actor.Name, id, status),
	}
	if result.Product != nil {
		payload["product"] = productPayload(result.Product)
	}
	s.notifier.Publish(payload)
	return &result, nil
}

// lockProduct waits for the per-product lock for at most the store timeout.
func (s *transactionService) lockProduct(ctx context.Context, id uuid.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	unlock, err := s.locks.Lock(lockCtx, id)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: product %s is busy", model.ErrUnavailable, id)
	}
	return unlock, nil
}

// runDetached runs fn inside one store transaction. Once started the work is
// not interrupted by caller cancellation, only by the store timeout.
func (s *transactionService) runDetached(ctx context.Context, fn func(context.Context, Stores) error) error {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	err := s.uow.RunInTx(runCtx, func(st Stores) error {
		return fn(runCtx, st)
	})
	return classify(runCtx, err)
}

func checkQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", model.ErrInvalidQuantity, q)
	}
	return nil
}

func transactionPayload(tx *model.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":          tx.ID,
		"type":        tx.Type,
		"status":      tx.Status,
		"quantity":    tx.Quantity,
		"product_id":  tx.ProductID,
		"total_price": tx.TotalPrice,
	}
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":    p.ID,
		"sku":   p.SKU,
		"name":  p.Name,
		"stock": p.StockQuantity,
		"price": p.Price,
	}
}
