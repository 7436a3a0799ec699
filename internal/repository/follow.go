package repository

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for the social graph.
type FollowRepository interface {
	// Follow creates the edge if absent. Following an already-followed user
	// is a no-op: the insert is conflict-tolerant so concurrent requests for
	// the same pair cannot produce duplicates.
	Follow(ctx context.Context, followerID, followedID uint) error
	// Unfollow removes the edge; removing a non-existent edge is a no-op.
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	// IsFollowedBy reports whether followerID follows userID; the transposed
	// edge query to IsFollowing.
	IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error)
	Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	// FollowedPosts returns posts authored by anyone the subject follows,
	// newest first. The mandatory self-follow puts the subject's own posts
	// in the result.
	FollowedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	// ReconcileSelfFollows adds the self-follow edge for every user missing
	// it and returns how many were repaired.
	ReconcileSelfFollows(ctx context.Context) (int64, error)
}

type followRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		// The unique key is the backstop when the driver cannot express
		// ON CONFLICT; a duplicate is still a successful no-op.
		if isUniqueConstraintError(err) {
			return nil
		}
		return models.NewInternalError(err)
	}
	// The follower's feed now includes another author's posts.
	cache.InvalidateUserFeed(ctx, followerID)
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUserFeed(ctx, followerID)
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error) {
	return r.IsFollowing(ctx, followerID, userID)
}

func (r *followRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) FollowedPosts(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	defer r.metrics.TrackQuery("followed_posts", "posts")()

	var posts []models.Post
	key := cache.FeedKey(userID, limit, offset)
	err := cache.Aside(ctx, key, &posts, cache.FeedTTL, func() error {
		return r.db.WithContext(ctx).
			Joins("JOIN follows ON follows.followed_id = posts.author_id").
			Where("follows.follower_id = ?", userID).
			Preload("Author").
			Order("posts.created_at DESC").
			Limit(limit).Offset(offset).
			Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *followRepository) ReconcileSelfFollows(ctx context.Context) (int64, error) {
	defer r.metrics.TrackQuery("reconcile_self_follows", "follows")()

	var repaired int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.User{}).
			Where("id NOT IN (?)",
				tx.Model(&models.Follow{}).
					Select("follower_id").
					Where("follower_id = followed_id"),
			).
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		for _, id := range ids {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Follow{FollowerID: id, FollowedID: id}).Error; err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if repaired > 0 {
		cache.InvalidateFeeds(ctx)
	}
	return repaired, nil
}
