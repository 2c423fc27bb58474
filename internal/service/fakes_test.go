package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory UnitOfWork. RunInTx runs one fn at a time and
// restores every map when fn fails.
type memDB struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	products  map[uuid.UUID]model.Product
	txs       map[uuid.UUID]model.Transaction
	suppliers map[uuid.UUID]bool

	insertErr error
	casMisses int           // forced ConditionalUpdateQuantity misses
	txDelay   time.Duration // simulated store latency inside RunInTx
	runs      int

	// racingStatus is committed by a simulated second session right before
	// the next conditional status write, so that write misses. It survives
	// the rollback of the transaction it raced.
	racingStatus model.TransactionStatus
	committed    map[uuid.UUID]model.Transaction
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[uuid.UUID]model.Product{},
		txs:       map[uuid.UUID]model.Transaction{},
		suppliers: map[uuid.UUID]bool{},
		committed: map[uuid.UUID]model.Transaction{},
	}
}

func (m *memDB) addProduct(stock int, price string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Product{SKU: "SKU-" + uuid.NewString()[:6], Name: "Widget", Price: decimal.RequireFromString(price), StockQuantity: stock}
	p.ID = uuid.New()
	m.products[p.ID] = p
	return p.ID
}

func (m *memDB) addSupplier() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.suppliers[id] = true
	return id
}

func (m *memDB) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memDB) txCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

func (m *memDB) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

func (m *memDB) Stores() Stores {
	return Stores{Products: memProducts{m}, Transactions: memJournal{m}, Suppliers: memSuppliers{m}}
}

func (m *memDB) RunInTx(ctx context.Context, fn func(Stores) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.runs++
	products := make(map[uuid.UUID]model.Product, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	txs := make(map[uuid.UUID]model.Transaction, len(m.txs))
	for k, v := range m.txs {
		txs[k] = v
	}
	delay := m.txDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := fn(m.Stores())
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.products, m.txs = products, txs
	}
	for id, tx := range m.committed {
		m.txs[id] = tx
		delete(m.committed, id)
	}
	return err
}

type memProducts struct{ m *memDB }

func (s memProducts) Get(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.products[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (s memProducts) ConditionalUpdateQuantity(_ context.Context, id uuid.UUID, expected, next int) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.casMisses > 0 {
		s.m.casMisses--
		return false, nil
	}
	p, ok := s.m.products[id]
	if !ok || p.StockQuantity != expected {
		return false, nil
	}
	p.StockQuantity = next
	s.m.products[id] = p
	return true, nil
}

func (s memProducts) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	_, ok := s.m.products[id]
	return ok, nil
}

type memJournal struct{ m *memDB }

func (j memJournal) Insert(_ context.Context, tx *model.Transaction) error {
	j.m.mu.Lock()
	defer j.m.mu.Unlock()
	if j.m.insertErr != nil {
		return j.m.insertErr
	}
	j.m.txs[tx.ID] = *tx
	return nil
}

func (j memJournal) Get(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	j.m.mu.Lock()
	defer j.m.mu.Unlock()
	tx, ok := j.m.txs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &tx, nil
}

func (j memJournal) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.TransactionStatus, updatedBy string) (bool, error) {
	j.m.mu.Lock()
	defer j.m.mu.Unlock()
	tx, ok := j.m.txs[id]
	if ok && j.m.racingStatus != "" {
		tx.Status, tx.UpdatedBy = j.m.racingStatus, "other-session"
		j.m.txs[id], j.m.committed[id] = tx, tx
		j.m.racingStatus = ""
	}
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	tx.UpdatedBy = updatedBy
	j.m.txs[id] = tx
	return true, nil
}

func (j memJournal) sorted(keep func(model.Transaction) bool) []model.Transaction {
	j.m.mu.Lock()
	defer j.m.mu.Unlock()
	out := []model.Transaction{}
	for _, tx := range j.m.txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID.String() > out[b].ID.String()
	})
	return out
}

func (j memJournal) Query(_ context.Context, f repository.TransactionFilter, page, size int) ([]model.Transaction, int64, error) {
	all := j.sorted(func(tx model.Transaction) bool {
		return (f.Type == "" || tx.Type == f.Type) &&
			(f.Status == "" || tx.Status == f.Status) &&
			(f.CreatedByUserID == "" || (tx.CreatedByUserID != nil && *tx.CreatedByUserID == f.CreatedByUserID)) &&
			(f.Search == "" || strings.Contains(strings.ToLower(tx.Description), strings.ToLower(f.Search)))
	})
	start := page * size
	if start >= len(all) {
		return []model.Transaction{}, int64(len(all)), nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (j memJournal) FindCreatedBetween(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	return j.sorted(func(tx model.Transaction) bool {
		return !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end)
	}), nil
}

type memSuppliers struct{ m *memDB }

func (s memSuppliers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.suppliers[id], nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
}

func (n *recordingNotifier) Publish(payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload.(map[string]interface{}))
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.payloads))
	for i, p := range n.payloads {
		out[i] = p["action"].(string)
	}
	return out
}

var testActor = Actor{UserID: "u-1", Name: "Tester", Email: "tester@example.com"}
