package server

import (
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		AcceptTerms bool   `json:"accept_terms"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    presentOwnUser(user, 0),
		"message": "A confirmation email has been sent to you by email.",
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, apiToken, err := s.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": apiToken,
		"user":  presentOwnUser(user, 0),
	})
}

// Confirm handles GET /api/auth/confirm/:token
func (s *Server) Confirm(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	if err := s.authService.Confirm(c.Context(), user, c.Params("token")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "You have confirmed your account. Thanks!",
	})
}

// ResendConfirmation handles POST /api/auth/resend-confirmation
func (s *Server) ResendConfirmation(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	if err := s.authService.ResendConfirmation(c.Context(), user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "A new confirmation email has been sent to you by email.",
	})
}

// RecoverPassword handles POST /api/auth/recover-password
func (s *Server) RecoverPassword(c *fiber.Ctx) error {
	// Recovery is only meaningful for anonymous callers.
	if middleware.UserFromCtx(c) != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You are already logged in"))
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	if err := s.authService.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "An email with instructions to reset your password has been sent to you.",
	})
}

// ResetPassword handles POST /api/auth/reset-password/:token
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password is required"))
	}

	if err := s.authService.CompletePasswordReset(c.Context(), c.Params("token"), req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Your password has been updated.",
	})
}

// RequestEmailChange handles POST /api/auth/change-email
func (s *Server) RequestEmailChange(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	if err := s.authService.RequestEmailChange(c.Context(), user, req.Email, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "An email with instructions to confirm your new email address has been sent to you.",
	})
}

// ConfirmEmailChange handles GET /api/auth/change-email/:token
func (s *Server) ConfirmEmailChange(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)

	if err := s.authService.CompleteEmailChange(c.Context(), user, c.Params("token")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Your email address has been updated.",
	})
}
