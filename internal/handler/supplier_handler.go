package handler

import (
	"go-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	suppliers service.SupplierService
}

func NewSupplierHandler(suppliers service.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	supplier, err := h.suppliers.CreateSupplier(uid, pid, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	supplierID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	supplier, err := h.suppliers.UpdateSupplier(uid, pid, supplierID, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *SupplierHandler) DeleteSupplier(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	supplierID, err := paramUUID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.suppliers.DeleteSupplier(uid, pid, supplierID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

func (h *SupplierHandler) GetSuppliers(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	suppliers, err := h.suppliers.ListSuppliers(uid, pid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(suppliers)
}
