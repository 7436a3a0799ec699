package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

// UserService owns profile management and the admin-only role assignment.
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

type UpdateProfileInput struct {
	Name     string
	Bio      string
	Location string
	Avatar   string
}

// AdminUpdateInput is the broader edit form available to administrators.
type AdminUpdateInput struct {
	Username  *string
	Email     *string
	Confirmed *bool
	RoleID    *uint
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

const maxBioLen = 500
const maxNameLen = 64
const maxLocationLen = 64

// UpdateProfile edits the acting user's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, in UpdateProfileInput) (*models.User, error) {
	if len(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	if len(in.Name) > maxNameLen {
		return nil, models.NewValidationError("Name too long (max 64 characters)")
	}
	if len(in.Location) > maxLocationLen {
		return nil, models.NewValidationError("Location too long (max 64 characters)")
	}

	actor.Name = in.Name
	actor.Bio = in.Bio
	actor.Location = in.Location
	if in.Avatar != "" {
		actor.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// AdminUpdateUser is the administrator's edit form: it can rename, re-email,
// confirm and reassign the role of any account.
func (s *UserService) AdminUpdateUser(ctx context.Context, actor *models.User, targetID uint, in AdminUpdateInput) (*models.User, error) {
	if !actor.IsAdministrator() {
		return nil, models.NewForbiddenError("Administrator access required")
	}

	target, err := s.userRepo.GetByIDWithRole(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		target.Username = *in.Username
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		target.Email = *in.Email
	}
	if in.Confirmed != nil {
		target.Confirmed = *in.Confirmed
	}
	if in.RoleID != nil {
		role, err := s.roleRepo.GetByID(ctx, *in.RoleID)
		if err != nil {
			return nil, err
		}
		target.RoleID = role.ID
		target.Role = role
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}
