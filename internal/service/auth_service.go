// Package service contains the application's business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"quill/internal/mail"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/token"
	"quill/internal/validation"
)

// apiTokenTTL is the lifetime of bearer tokens handed out at login,
// independent of the short-lived lifecycle tokens.
const apiTokenTTL = 24 * time.Hour

// AuthService owns registration, login and the token-driven account
// lifecycle: confirmation, password reset and email change.
type AuthService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	codec      *token.Codec
	mailer     *mail.Queue
	adminEmail string
	baseURL    string
}

func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	codec *token.Codec,
	mailer *mail.Queue,
	adminEmail string,
	baseURL string,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		codec:      codec,
		mailer:     mailer,
		adminEmail: strings.ToLower(adminEmail),
		baseURL:    baseURL,
	}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	AcceptTerms bool
}

// Register creates an unconfirmed account and enqueues the confirmation
// email. The configured admin address registers straight into the
// Administrator role; everyone else gets the default role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !in.AcceptTerms {
		return nil, models.NewValidationError("You must accept the terms of use to register")
	}

	email := strings.ToLower(in.Email)

	role, err := s.resolveRole(ctx, email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:      in.Username,
		Email:         email,
		AcceptedTerms: true,
		RoleID:        role.ID,
		Role:          role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendConfirmation(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) resolveRole(ctx context.Context, email string) (*models.Role, error) {
	if s.adminEmail != "" && email == s.adminEmail {
		return s.roleRepo.GetByName(ctx, models.RoleAdministrator)
	}
	return s.roleRepo.GetDefault(ctx)
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil || !user.VerifyPassword(password) {
		return nil, "", models.NewAuthenticationError()
	}

	apiToken, err := s.codec.Issue(token.PurposeAPI, user.ID, token.WithTTL(apiTokenTTL))
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, apiToken, nil
}

// Confirm flips the account to confirmed if the token belongs to this user.
// Confirming an already-confirmed account succeeds without touching anything.
func (s *AuthService) Confirm(ctx context.Context, user *models.User, tokenString string) error {
	claims, err := s.codec.Verify(tokenString, token.PurposeConfirm)
	if err != nil {
		return err
	}
	if claims.UserID != user.ID {
		return models.NewTokenInvalidError()
	}
	if user.Confirmed {
		return nil
	}
	user.Confirmed = true
	return s.userRepo.Update(ctx, user)
}

// ResendConfirmation issues a fresh confirmation token and email. Earlier
// tokens stay valid until they expire on their own.
func (s *AuthService) ResendConfirmation(ctx context.Context, user *models.User) error {
	if user.Confirmed {
		return models.NewValidationError("Account is already confirmed")
	}
	return s.sendConfirmation(ctx, user)
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) error {
	t, err := s.codec.Issue(token.PurposeConfirm, user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.mailer.Enqueue(ctx, mail.Message{
		To:       user.Email,
		Subject:  "Confirm Your Account",
		Template: mail.TemplateConfirm,
		Vars: map[string]string{
			"username": user.Username,
			"token":    t,
			"base_url": s.baseURL,
		},
	})
}

// RequestPasswordReset issues a reset token for the given address. A miss is
// reported back to the caller; recovery does not hide whether an address is
// registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewEmailNotFoundError()
	}

	t, err := s.codec.Issue(token.PurposeReset, user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.mailer.Enqueue(ctx, mail.Message{
		To:       user.Email,
		Subject:  "Reset Your Password",
		Template: mail.TemplateReset,
		Vars: map[string]string{
			"username": user.Username,
			"token":    t,
			"base_url": s.baseURL,
		},
	})
}

// CompletePasswordReset sets a new password for the token's subject. The
// caller is anonymous; the token alone identifies the account.
func (s *AuthService) CompletePasswordReset(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.codec.Verify(tokenString, token.PurposeReset)
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return models.NewTokenInvalidError()
	}
	if err := user.SetPassword(newPassword); err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.Update(ctx, user)
}

// RequestEmailChange issues a change token embedding the proposed address
// and mails it there. The current password is required up front; the
// address's availability is re-checked at confirmation time.
func (s *AuthService) RequestEmailChange(ctx context.Context, user *models.User, newEmail, password string) error {
	if !user.VerifyPassword(password) {
		return models.NewAuthenticationError()
	}
	if err := validation.ValidateEmail(newEmail); err != nil {
		return models.NewValidationError(err.Error())
	}

	newEmail = strings.ToLower(newEmail)
	existing, err := s.userRepo.GetByEmail(ctx, newEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewValidationError("Email address already registered")
	}

	t, err := s.codec.Issue(token.PurposeEmailChange, user.ID, token.WithNewEmail(newEmail))
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.mailer.Enqueue(ctx, mail.Message{
		To:       newEmail,
		Subject:  "Confirm Your Email Address",
		Template: mail.TemplateEmailChange,
		Vars: map[string]string{
			"username": user.Username,
			"token":    t,
			"base_url": s.baseURL,
		},
	})
}

// CompleteEmailChange commits the address embedded in the token, provided
// the token belongs to this user and the address is still unclaimed.
func (s *AuthService) CompleteEmailChange(ctx context.Context, user *models.User, tokenString string) error {
	claims, err := s.codec.Verify(tokenString, token.PurposeEmailChange)
	if err != nil {
		return err
	}
	if claims.UserID != user.ID || claims.NewEmail == "" {
		return models.NewTokenInvalidError()
	}

	existing, err := s.userRepo.GetByEmail(ctx, claims.NewEmail)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return models.NewValidationError("Email address already registered")
	}

	user.Email = claims.NewEmail
	return s.userRepo.Update(ctx, user)
}
