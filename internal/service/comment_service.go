package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

const maxCommentLen = 10000

// CommentService owns commenting and moderation. Commenting requires the
// comment capability; disabling and re-enabling requires moderate.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, postID uint, body string) (*models.Comment, error) {
	if !actor.Can(models.PermissionComment) {
		return nil, models.NewForbiddenError("You do not have permission to comment")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: actor.ID,
	}
	comment.SetBody(body)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments oldest first. Disabled comments are
// included only for actors holding the moderate capability.
func (s *CommentService) ListComments(ctx context.Context, actor models.Actor, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, 0, err
	}
	includeDisabled := actor.Can(models.PermissionModerate)
	comments, err := s.commentRepo.ListByPost(ctx, postID, includeDisabled, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.CountByPost(ctx, postID, includeDisabled)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListAllComments is the moderation queue: every comment, newest first.
func (s *CommentService) ListAllComments(ctx context.Context, actor *models.User, limit, offset int) ([]*models.Comment, error) {
	if !actor.Can(models.PermissionModerate) {
		return nil, models.NewForbiddenError("You do not have permission to moderate comments")
	}
	return s.commentRepo.List(ctx, limit, offset)
}

// SetDisabled hides or restores a comment. The comment itself is never
// deleted by moderation.
func (s *CommentService) SetDisabled(ctx context.Context, actor *models.User, commentID uint, disabled bool) (*models.Comment, error) {
	if !actor.Can(models.PermissionModerate) {
		return nil, models.NewForbiddenError("You do not have permission to moderate comments")
	}
	if err := s.commentRepo.SetDisabled(ctx, commentID, disabled); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, commentID)
}
