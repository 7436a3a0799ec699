package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

// PostService owns post authoring. Authorship requires the write capability;
// editing is restricted to the author or an administrator.
type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, actor *models.User, in models.PostInput) (*models.Post, error) {
	if !actor.Can(models.PermissionWrite) {
		return nil, models.NewForbiddenError("You do not have permission to write posts")
	}
	post, err := models.PostFromInput(in, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, slug)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.postRepo.GetByAuthorID(ctx, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.postRepo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.postRepo.CountByAuthor(ctx, authorID)
}

// UpdatePost edits a post's title and body. Only the author or an
// administrator may edit; an unchanged title keeps the established slug.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, postID uint, in models.PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID && !actor.IsAdministrator() {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if in.Title == "" {
		return nil, models.NewValidationError("post does not have a title")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("post does not have a body")
	}

	post.SetTitle(in.Title)
	post.SetBody(in.Body)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && !actor.IsAdministrator() {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}
