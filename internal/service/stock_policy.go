package service

import (
	"fmt"

	"go-inventory-ledger/internal/model"
)

// StockPolicy decides when a transaction's quantity reaches product stock.
type StockPolicy string

const (
	// StockOnCreate moves stock when the transaction is recorded; new
	// transactions start COMPLETED.
	StockOnCreate StockPolicy = "on_create"
	// StockOnComplete records transactions as PENDING and moves stock on
	// the PROCESSING -> COMPLETED transition.
	StockOnComplete StockPolicy = "on_complete"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(s); p {
	case "":
		return StockOnCreate, nil
	case StockOnCreate, StockOnComplete:
		return p, nil
	}
	return "", fmt.Errorf("unknown stock policy %q", s)
}

// initialStatus is the status a newly recorded transaction gets.
func (p StockPolicy) initialStatus() model.TransactionStatus {
	if p == StockOnComplete {
		return model.StatusPending
	}
	return model.StatusCompleted
}

// movesStockOnCreate reports whether recording a transaction applies its delta.
func (p StockPolicy) movesStockOnCreate() bool {
	return p != StockOnComplete
}

// movesStockOn reports whether a transition into status applies the delta.
func (p StockPolicy) movesStockOn(status model.TransactionStatus) bool {
	return p == StockOnComplete && status == model.StatusCompleted
}
