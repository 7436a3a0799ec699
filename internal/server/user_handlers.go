package server

import (
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	postCount, err := s.postService.CountPostsByAuthor(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out, err := s.presentProfileFor(c, user, postCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// presentProfileFor adds the relationship flags when another authenticated
// user is viewing the profile.
func (s *Server) presentProfileFor(c *fiber.Ctx, user *models.User, postCount int64) (UserJSON, error) {
	out := presentUser(user, postCount)

	viewer := middleware.UserFromCtx(c)
	if viewer == nil || viewer.ID == user.ID {
		return out, nil
	}
	following, err := s.followService.IsFollowing(c.Context(), viewer.ID, user.ID)
	if err != nil {
		return out, err
	}
	followsYou, err := s.followService.IsFollowedBy(c.Context(), viewer.ID, user.ID)
	if err != nil {
		return out, err
	}
	out.Following = &following
	out.FollowsYou = &followsYou
	return out, nil
}

// GetUserByUsername handles GET /api/users/by-username/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	postCount, err := s.postService.CountPostsByAuthor(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	out, err := s.presentProfileFor(c, user, postCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	postCount, err := s.postService.CountPostsByAuthor(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentOwnUser(user, postCount))
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	var req struct {
		Name     string `json:"name"`
		Bio      string `json:"bio"`
		Location string `json:"location"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.userService.UpdateProfile(c.Context(), user, service.UpdateProfileInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondError(c, err)
	}

	postCount, err := s.postService.CountPostsByAuthor(c.Context(), updated.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentOwnUser(updated, postCount))
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	if _, err := s.userService.GetUserByID(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	posts, total, err := s.postService.ListPostsByAuthor(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": presentPosts(posts),
		"total": total,
	})
}

// GetUserFollowedPosts handles GET /api/users/:id/followed-posts
func (s *Server) GetUserFollowedPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	if _, err := s.userService.GetUserByID(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	posts, err := s.followService.FollowedFeed(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]PostJSON, 0, len(posts))
	for i := range posts {
		out = append(out, presentPost(&posts[i]))
	}
	return c.JSON(fiber.Map{"posts": out})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	users, err := s.followService.Followers(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	total, err := s.followService.CountFollowers(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": presentUserList(users),
		"total": total,
	})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	users, err := s.followService.Following(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	total, err := s.followService.CountFollowing(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": presentUserList(users),
		"total": total,
	})
}

func presentUserList(users []models.User) []UserJSON {
	out := make([]UserJSON, 0, len(users))
	for i := range users {
		out = append(out, presentUser(&users[i], 0))
	}
	return out
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	if err := s.followService.Follow(c.Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := middleware.UserFromCtx(c)

	if err := s.followService.Unfollow(c.Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}
