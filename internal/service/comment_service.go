package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// CommentService manages comments under posts. Deletion is a soft-delete
// flag: the row persists but disappears from reads.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Message string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Message   string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, models.NewValidationError("Comment message is required")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	comment := &models.Comment{
		Message:   in.Message,
		PostID:    in.PostID,
		CreatedBy: in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment returns one visible comment under the given post. A comment
// addressed through the wrong post, or one flagged deleted, reads as missing.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	if comment.IsDeleted || comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// ListByPost returns the visible comments under a post, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint, params pagination.Params) ([]*models.Comment, pagination.Meta, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pagination.Meta{}, models.NewNotFoundError("Post", postID)
		}
		return nil, pagination.Meta{}, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return comments, params.MetaFor(total), nil
}

// ListByUser returns a user's visible comments across all posts.
func (s *CommentService) ListByUser(ctx context.Context, userID uint, params pagination.Params) ([]*models.Comment, pagination.Meta, error) {
	comments, err := s.commentRepo.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.commentRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return comments, params.MetaFor(total), nil
}

// UpdateComment edits the caller's own comment and stamps EditedAt.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, models.NewValidationError("Comment message is required")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.IsDeleted || comment.PostID != in.PostID {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.CreatedBy != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	now := time.Now()
	comment.Message = in.Message
	comment.EditedAt = &now

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment flags the caller's comment as deleted without removing the row.
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return err
	}

	if comment.IsDeleted || comment.PostID != postID {
		return models.NewNotFoundError("Comment", commentID)
	}
	if comment.CreatedBy != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	return s.commentRepo.SoftDelete(ctx, commentID)
}
