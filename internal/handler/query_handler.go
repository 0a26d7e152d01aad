package handler

import (
	"strconv"

	"go-backoffice/internal/model"
	"go-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QueryHandler struct {
	query service.QueryService
}

func NewQueryHandler(query service.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

// Search runs the read-only cross-entity search for one project.
func (h *QueryHandler) Search(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	filter := service.SearchFilter{
		MovementType: model.MovementType(c.Query("movement_type")),
		OrderStatus:  model.OrderStatus(c.Query("order_status")),
	}
	if raw := c.Query("supplier_id"); raw != "" {
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid supplier_id"})
		}
		filter.SupplierID = &supplierID
	}

	results, err := h.query.Search(uid, pid, c.Query("q"), filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(results)
}

func (h *QueryHandler) GetMovementSummary(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	days, _ := strconv.Atoi(c.Query("days", "7"))

	rows, err := h.query.MovementSummary(uid, pid, days)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rows)
}
