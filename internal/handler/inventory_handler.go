package handler

import (
	"go-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	ledger  service.LedgerService
	reorder service.ReorderService
}

func NewInventoryHandler(ledger service.LedgerService, reorder service.ReorderService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reorder: reorder}
}

func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.ledger.CreateItem(uid, pid, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item created", "data": item})
}

func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.ledger.UpdateItem(uid, pid, itemID, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}

func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.ledger.DeleteItem(uid, pid, itemID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item deleted"})
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	item, err := h.ledger.GetItem(uid, pid, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(item)
}

func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	items, err := h.ledger.ListItems(uid, pid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(items)
}

func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.ledger.PostMovement(uid, pid, itemID, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Movement posted", "data": item})
}

func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	movements, err := h.ledger.ListMovements(uid, pid, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(movements)
}

// GetBalance replays the ledger for one item and returns the reconstructed
// balance next to the stored one.
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	balance, err := h.ledger.ReconstructBalance(uid, pid, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	item, err := h.ledger.GetItem(uid, pid, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"reconstructed_balance": balance,
		"quantity_available":    item.QuantityAvailable,
		"consistent":            balance == item.QuantityAvailable,
	})
}

func (h *InventoryHandler) GetReorderSuggestions(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	suggestions, err := h.reorder.Scan(uid, pid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(suggestions)
}
