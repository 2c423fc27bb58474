package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 20

type TransactionHandler struct {
	processor service.TransactionService
	query     service.TransactionQueryService
}

func NewTransactionHandler(processor service.TransactionService, query service.TransactionQueryService) *TransactionHandler {
	return &TransactionHandler{processor: processor, query: query}
}

// Purchase records stock arriving from a supplier.
// POST /api/v1/transactions/purchase
func (h *TransactionHandler) Purchase(c *fiber.Ctx) error {
	var req service.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.processor.RecordPurchase(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase recorded", "data": result})
}

// Sell records stock leaving to a customer.
// POST /api/v1/transactions/sell
func (h *TransactionHandler) Sell(c *fiber.Ctx) error {
	var req service.SellRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.processor.RecordSale(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": result})
}

// Return records stock sent back to a supplier.
// POST /api/v1/transactions/return
func (h *TransactionHandler) Return(c *fiber.Ctx) error {
	var req service.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.processor.RecordReturnToSupplier(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Return recorded", "data": result})
}

type statusRequest struct {
	Status model.TransactionStatus `json:"status"`
}

// UpdateStatus moves a transaction along its workflow.
// PUT /api/v1/transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return invalidID(c)
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.processor.UpdateTransactionStatus(c.UserContext(), actorFrom(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction status updated", "data": result})
}

// List returns one page of transactions, newest first.
// GET /api/v1/transactions?page=0&size=20&type=SALE&status=COMPLETED&search=...
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "page must be an integer"})
	}
	size, ok := queryInt(c, "size", defaultPageSize)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "size must be an integer"})
	}
	filter := repository.TransactionFilter{
		Type:   model.TransactionType(c.Query("type")),
		Status: model.TransactionStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	result, err := h.query.List(c.UserContext(), page, size, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ByMonthYear lists every transaction of one calendar month.
// GET /api/v1/transactions/by-month-year?month=2&year=2024
func (h *TransactionHandler) ByMonthYear(c *fiber.Ctx) error {
	month, okMonth := queryInt(c, "month", 0)
	year, okYear := queryInt(c, "year", 0)
	if !okMonth || !okYear || month == 0 || year == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "month and year are required integers"})
	}
	items, err := h.query.ListByMonthYear(c.UserContext(), month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"month": month, "year": year, "data": items})
}

// Get returns one transaction.
// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return invalidID(c)
	}
	tx, err := h.query.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}
