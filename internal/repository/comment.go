package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, includeDisabled bool, limit, offset int) ([]*models.Comment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint, includeDisabled bool) (int64, error)
	SetDisabled(ctx context.Context, id uint, disabled bool) error
	Delete(ctx context.Context, id uint) error
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, includeDisabled bool, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID)
	if !includeDisabled {
		query = query.Where("disabled = ?", false)
	}
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// List returns comments across all posts, newest first. Moderation view.
func (r *commentRepository) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint, includeDisabled bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID)
	if !includeDisabled {
		query = query.Where("disabled = ?", false)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) SetDisabled(ctx context.Context, id uint, disabled bool) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	err := r.db.WithContext(ctx).
		Model(&comment).
		Update("disabled", disabled).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
