package handler

import (
	"go-backoffice/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// userID extracts the authenticated user id set by the auth middleware.
func userID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, apperr.Unauthorized("not authenticated")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("invalid user id")
	}
	return id, nil
}

// projectID parses the :projectID route parameter.
func projectID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("projectID"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid project id")
	}
	return id, nil
}

// paramUUID parses an arbitrary uuid route parameter.
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindValidation, "invalid %s", name)
	}
	return id, nil
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindUnauthorized:           fiber.StatusForbidden,
	apperr.KindNotFound:               fiber.StatusNotFound,
	apperr.KindValidation:             fiber.StatusBadRequest,
	apperr.KindInsufficientStock:      fiber.StatusConflict,
	apperr.KindExcessReceipt:          fiber.StatusConflict,
	apperr.KindInvalidStateTransition: fiber.StatusConflict,
	apperr.KindConcurrencyConflict:    fiber.StatusConflict,
	apperr.KindInfrastructure:         fiber.StatusInternalServerError,
}

// respondErr maps a structured error kind to its HTTP status.
func respondErr(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	body := fiber.Map{"error": err.Error(), "kind": string(kind)}
	if kind == apperr.KindInfrastructure {
		// Do not leak store internals
		body["error"] = "internal server error"
	}
	return c.Status(status).JSON(body)
}
