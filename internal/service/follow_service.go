package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

// FollowService manages the social graph. Every mutation requires the
// follow capability on the acting user's role.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow creates the edge actor -> target. Re-following is a no-op success.
func (s *FollowService) Follow(ctx context.Context, actor *models.User, targetID uint) error {
	if !actor.Can(models.PermissionFollow) {
		return models.NewForbiddenError("You do not have permission to follow users")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.followRepo.Follow(ctx, actor.ID, targetID)
}

// Unfollow removes the edge actor -> target. Unfollowing someone not
// followed is a no-op success.
func (s *FollowService) Unfollow(ctx context.Context, actor *models.User, targetID uint) error {
	if !actor.Can(models.PermissionFollow) {
		return models.NewForbiddenError("You do not have permission to follow users")
	}
	// The self-follow edge backs the user's own feed and is not removable.
	if actor.ID == targetID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.followRepo.Unfollow(ctx, actor.ID, targetID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

// IsFollowedBy reports whether followerID follows userID.
func (s *FollowService) IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error) {
	return s.followRepo.IsFollowedBy(ctx, userID, followerID)
}

func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID, limit, offset)
}

func (s *FollowService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *FollowService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// FollowedFeed returns posts authored by users the given user follows,
// newest first. The self-follow edge keeps the user's own posts in it.
func (s *FollowService) FollowedFeed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.followRepo.FollowedPosts(ctx, userID, limit, offset)
}
