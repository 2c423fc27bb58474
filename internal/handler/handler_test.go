package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	err       error
	lastActor service.Actor
	lastSell  *service.SellRequest
}

func (s *stubProcessor) RecordPurchase(_ context.Context, a service.Actor, _ *service.PurchaseRequest) (*service.PurchaseResult, error) {
	s.lastActor = a
	return &service.PurchaseResult{}, s.err
}

func (s *stubProcessor) RecordSale(_ context.Context, a service.Actor, req *service.SellRequest) (*service.SaleResult, error) {
	s.lastActor, s.lastSell = a, req
	if s.err != nil {
		return nil, s.err
	}
	return &service.SaleResult{Transaction: model.Transaction{Quantity: req.Quantity, Status: model.StatusCompleted}}, nil
}

func (s *stubProcessor) RecordReturnToSupplier(_ context.Context, a service.Actor, _ *service.ReturnRequest) (*service.ReturnResult, error) {
	s.lastActor = a
	return &service.ReturnResult{}, s.err
}

func (s *stubProcessor) UpdateTransactionStatus(_ context.Context, _ service.Actor, id uuid.UUID, status model.TransactionStatus) (*service.StatusUpdateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.StatusUpdateResult{Transaction: model.Transaction{ID: id, Status: status}}, nil
}

type stubQuery struct {
	lastPage, lastSize int
	lastFilter         repository.TransactionFilter
	monthCalls         int
}

func (s *stubQuery) List(_ context.Context, page, size int, f repository.TransactionFilter) (*service.Page, error) {
	s.lastPage, s.lastSize, s.lastFilter = page, size, f
	return &service.Page{Items: []model.Transaction{}, Page: page, Size: size}, nil
}

func (s *stubQuery) GetByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	return nil, fmt.Errorf("%w: transaction %s", model.ErrNotFound, id)
}

func (s *stubQuery) ListByMonthYear(context.Context, int, int) ([]model.Transaction, error) {
	s.monthCalls++
	return []model.Transaction{}, nil
}

func newTestApp(p *stubProcessor, q *stubQuery) *fiber.App {
	h := NewTransactionHandler(p, q)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-9")
		c.Locals("user_name", "Rin")
		c.Locals("user_email", "rin@example.com")
		return c.Next()
	})
	app.Post("/transactions/sell", h.Sell)
	app.Put("/transactions/:id/status", h.UpdateStatus)
	app.Get("/transactions", h.List)
	app.Get("/transactions/by-month-year", h.ByMonthYear)
	app.Get("/transactions/:id", h.Get)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestTransactionHandler_Sell(t *testing.T) {
	p := &stubProcessor{}
	app := newTestApp(p, &stubQuery{})
	productID := uuid.New()

	status, body := do(t, app, "POST", "/transactions/sell", fmt.Sprintf(`{"product_id":"%s","quantity":3}`, productID))
	require.Equal(t, 201, status)
	require.Equal(t, "Sale recorded", body["message"])
	require.Equal(t, service.Actor{UserID: "u-9", Name: "Rin", Email: "rin@example.com"}, p.lastActor)
	require.Equal(t, productID, p.lastSell.ProductID)
	require.Equal(t, 3, p.lastSell.Quantity)

	status, _ = do(t, app, "POST", "/transactions/sell", `{not json`)
	require.Equal(t, 400, status)
}

func TestTransactionHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: product", model.ErrNotFound), 404},
		{model.ErrInvalidQuantity, 400},
		{model.ErrValidation, 400},
		{model.ErrInsufficientStock, 409},
		{model.ErrInvalidTransition, 409},
		{model.ErrConflict, 409},
		{fmt.Errorf("%w: timeout", model.ErrUnavailable), 503},
		{context.Canceled, 408},
		{fmt.Errorf("boom"), 500},
	}
	for _, tc := range cases {
		app := newTestApp(&stubProcessor{err: tc.err}, &stubQuery{})
		status, body := do(t, app, "POST", "/transactions/sell", `{"quantity":1}`)
		require.Equal(t, tc.want, status, tc.err.Error())
		require.NotEmpty(t, body["error"])
	}
}

func TestTransactionHandler_UpdateStatus(t *testing.T) {
	app := newTestApp(&stubProcessor{}, &stubQuery{})
	id := uuid.New()

	status, body := do(t, app, "PUT", "/transactions/"+id.String()+"/status", `{"status":"PROCESSING"}`)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	require.Equal(t, "PROCESSING", data["transaction"].(map[string]interface{})["status"])

	status, _ = do(t, app, "PUT", "/transactions/not-a-uuid/status", `{"status":"PROCESSING"}`)
	require.Equal(t, 400, status)
}

func TestTransactionHandler_Queries(t *testing.T) {
	q := &stubQuery{}
	app := newTestApp(&stubProcessor{}, q)

	status, _ := do(t, app, "GET", "/transactions?page=2&size=5&type=SALE&status=COMPLETED&search=bolt", "")
	require.Equal(t, 200, status)
	require.Equal(t, 2, q.lastPage)
	require.Equal(t, 5, q.lastSize)
	require.Equal(t, repository.TransactionFilter{Type: model.TxSale, Status: model.StatusCompleted, Search: "bolt"}, q.lastFilter)

	do(t, app, "GET", "/transactions", "")
	require.Equal(t, 0, q.lastPage)
	require.Equal(t, defaultPageSize, q.lastSize)

	status, _ = do(t, app, "GET", "/transactions?page=abc", "")
	require.Equal(t, 400, status)

	status, _ = do(t, app, "GET", "/transactions/by-month-year?month=2&year=2024", "")
	require.Equal(t, 200, status)
	require.Equal(t, 1, q.monthCalls)

	status, _ = do(t, app, "GET", "/transactions/by-month-year?month=2", "")
	require.Equal(t, 400, status)

	status, _ = do(t, app, "GET", "/transactions/"+uuid.NewString(), "")
	require.Equal(t, 404, status)
}
