package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByAuthorID(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		return r.applyCommentCount(r.db.WithContext(ctx)).
			Preload("Author").
			First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.applyCommentCount(r.db.WithContext(ctx)).
		Preload("Author").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByAuthorID(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyCommentCount(r.db.WithContext(ctx)).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyCommentCount(r.db.WithContext(ctx)).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Save(post).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateFeeds(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeeds(ctx)
	return nil
}

// applyCommentCount adds a subquery so the comment total rides along in one query.
func (r *postRepository) applyCommentCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count")
}
