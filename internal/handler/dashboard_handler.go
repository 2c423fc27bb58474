package handler

import (
	"time"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	loc     *time.Location
}

func NewDashboardHandler(s service.DashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{service: s, loc: loc}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetMonthlyActivity returns per-day activity for charts.
// Query params: month, year (default: current month)
func (h *DashboardHandler) GetMonthlyActivity(c *fiber.Ctx) error {
	now := time.Now().In(h.loc)
	month, okMonth := queryInt(c, "month", int(now.Month()))
	year, okYear := queryInt(c, "year", now.Year())
	if !okMonth || !okYear {
		return c.Status(400).JSON(fiber.Map{"error": "month and year must be integers"})
	}

	data, err := h.service.GetMonthlyActivity(c.UserContext(), month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month": month,
		"year":  year,
		"data":  data,
	})
}
