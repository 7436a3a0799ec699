package server

import (
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]UserJSON, 0, len(users))
	for i := range users {
		out = append(out, presentOwnUser(&users[i], 0))
	}
	return c.JSON(fiber.Map{"users": out})
}

// AdminSetRole handles PUT /api/admin/users/:id/role
func (s *Server) AdminSetRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	admin := middleware.UserFromCtx(c)

	var req struct {
		RoleID uint `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RoleID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("role_id is required"))
	}

	user, err := s.userService.AdminUpdateUser(c.Context(), admin, id, service.AdminUpdateInput{
		RoleID: &req.RoleID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentOwnUser(user, 0))
}

// AdminUpdateUser handles PUT /api/admin/users/:id: the broader edit form
// covering username, email, confirmed flag and role.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	admin := middleware.UserFromCtx(c)

	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		Confirmed *bool   `json:"confirmed"`
		RoleID    *uint   `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.AdminUpdateUser(c.Context(), admin, id, service.AdminUpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		Confirmed: req.Confirmed,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentOwnUser(user, 0))
}
