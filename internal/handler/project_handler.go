package handler

import (
	"go-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	tenancy service.TenancyService
}

func NewProjectHandler(tenancy service.TenancyService) *ProjectHandler {
	return &ProjectHandler{tenancy: tenancy}
}

func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req service.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	project, err := h.tenancy.CreateProject(uid, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Project created", "data": project})
}

// MyProjects lists the caller's active memberships with their roles.
func (h *ProjectHandler) MyProjects(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}

	members, err := h.tenancy.ResolveRoles(uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(members)
}

func (h *ProjectHandler) GetMembers(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	members, err := h.tenancy.Members(uid, pid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(members)
}

func (h *ProjectHandler) AddMember(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req service.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	member, err := h.tenancy.AddMember(uid, pid, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Member added", "data": member})
}

func (h *ProjectHandler) UpdateMember(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondErr(c, err)
	}
	pid, err := projectID(c)
	if err != nil {
		return respondErr(c, err)
	}
	targetID, err := paramUUID(c, "userID")
	if err != nil {
		return respondErr(c, err)
	}

	var req service.MemberUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	member, err := h.tenancy.UpdateMember(uid, pid, targetID, &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member updated", "data": member})
}
