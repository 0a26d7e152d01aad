package handler

import (
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders service.PurchaseOrderService
}

func NewOrderHandler(orders service.PurchaseOrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.CreateOrder(uid, pid, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req service.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.UpdateOrder(uid, pid, orderID, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	order, err := h.orders.GetOrder(uid, pid, orderID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	filter := repository.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
	}
	if raw := c.Query("supplier_id"); raw != "" {
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid supplier_id"})
		}
		filter.SupplierID = &supplierID
	}

	orders, err := h.orders.ListOrders(uid, pid, filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	return h.lifecycle(c, h.orders.SubmitOrder, "Order submitted")
}

func (h *OrderHandler) MarkOrdered(c *fiber.Ctx) error {
	return h.lifecycle(c, h.orders.MarkOrdered, "Order placed with supplier")
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	return h.lifecycle(c, h.orders.CancelOrder, "Order cancelled")
}

func (h *OrderHandler) lifecycle(
	c *fiber.Ctx,
	op func(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error),
	message string,
) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	order, err := op(uid, pid, orderID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": message, "data": order})
}

func (h *OrderHandler) ReceiveItems(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var body struct {
		Receipts []service.ReceiptRequest `json:"receipts"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.ReceiveItems(uid, pid, orderID, body.Receipts)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Items received", "data": order})
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.orders.DeleteOrder(uid, pid, orderID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}
