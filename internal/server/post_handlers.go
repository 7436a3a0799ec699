package server

import (
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, total, err := s.postService.ListPosts(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": presentPosts(posts),
		"total": total,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.presentPostFor(c, post))
}

// GetPostBySlug handles GET /api/posts/by-slug/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	post, err := s.postService.GetPostBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.presentPostFor(c, post))
}

// presentPostFor includes the raw body when the caller may edit the post.
func (s *Server) presentPostFor(c *fiber.Ctx, post *models.Post) PostJSON {
	user := middleware.UserFromCtx(c)
	if user != nil && (user.ID == post.AuthorID || user.IsAdministrator()) {
		return presentPostForEdit(post)
	}
	return presentPost(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	var req models.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(presentPostForEdit(post))
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	var req models.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentPostForEdit(post))
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	if err := s.postService.DeletePost(c.Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeed handles GET /api/feed: posts from followed users, newest first.
// The self-follow edge keeps the caller's own posts in the feed.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)
	p := parsePagination(c, 20)

	posts, err := s.followService.FollowedFeed(c.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]PostJSON, 0, len(posts))
	for i := range posts {
		out = append(out, presentPost(&posts[i]))
	}
	return c.JSON(fiber.Map{"posts": out})
}
