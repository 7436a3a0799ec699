package server

import (
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments. Disabled comments are
// visible only to moderators.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	actor := middleware.ActorFromCtx(c)
	comments, total, err := s.commentService.ListComments(c.Context(), actor, id, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"comments": presentComments(comments),
		"total":    total,
	})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), user, id, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(presentComment(comment))
}

// ModerateListComments handles GET /api/moderate/comments
func (s *Server) ModerateListComments(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)
	p := parsePagination(c, 50)

	comments, err := s.commentService.ListAllComments(c.Context(), user, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": presentComments(comments)})
}

// DisableComment handles PATCH /api/moderate/comments/:id/disable
func (s *Server) DisableComment(c *fiber.Ctx) error {
	return s.setCommentDisabled(c, true)
}

// EnableComment handles PATCH /api/moderate/comments/:id/enable
func (s *Server) EnableComment(c *fiber.Ctx) error {
	return s.setCommentDisabled(c, false)
}

func (s *Server) setCommentDisabled(c *fiber.Ctx, disabled bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	comment, err := s.commentService.SetDisabled(c.Context(), user, id, disabled)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentComment(comment))
}
