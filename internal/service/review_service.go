package service

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// ReviewService drives the editorial workflow. A decision sets the post's
// status unconditionally and upserts the reviewer's verdict row, so repeated
// decisions are idempotent at the post level and overwrite at the review
// level.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	postRepo   repository.PostRepository
	isAdmin    func(ctx context.Context, userID uint) (bool, error)
}

type ReviewDecisionInput struct {
	PostID     uint
	ReviewerID uint
	Rating     int
	Comment    string
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		postRepo:   postRepo,
		isAdmin:    isAdmin,
	}
}

func (s *ReviewService) requireAdmin(ctx context.Context, userID uint) error {
	if s.isAdmin == nil {
		return models.NewForbiddenError("Only admins can review posts")
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Only admins can review posts")
	}
	return nil
}

// Approve marks the post APPROVED and records the reviewer's verdict.
func (s *ReviewService) Approve(ctx context.Context, in ReviewDecisionInput) (*models.PostReview, error) {
	return s.decide(ctx, in, models.ReviewStatusApproved, models.PostStatusApproved)
}

// Reject marks the post REJECTED and records the reviewer's verdict.
func (s *ReviewService) Reject(ctx context.Context, in ReviewDecisionInput) (*models.PostReview, error) {
	return s.decide(ctx, in, models.ReviewStatusRejected, models.PostStatusRejected)
}

func (s *ReviewService) decide(ctx context.Context, in ReviewDecisionInput, reviewStatus, postStatus string) (*models.PostReview, error) {
	if err := s.requireAdmin(ctx, in.ReviewerID); err != nil {
		return nil, err
	}
	if in.Rating != 0 && (in.Rating < 1 || in.Rating > 5) {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	// Status is set unconditionally: re-deciding a post is idempotent.
	if err := s.postRepo.UpdateStatus(ctx, post.ID, postStatus); err != nil {
		return nil, err
	}

	review := &models.PostReview{
		Reviewer: in.ReviewerID,
		PostID:   in.PostID,
		Comment:  in.Comment,
		Rating:   in.Rating,
		Status:   reviewStatus,
	}
	if err := s.reviewRepo.Upsert(ctx, review); err != nil {
		return nil, err
	}

	cache.InvalidateApprovedPosts(ctx)

	stored, err := s.reviewRepo.GetByReviewerAndPost(ctx, in.ReviewerID, in.PostID)
	if err != nil {
		return nil, err
	}
	post.Status = postStatus
	stored.Post = *post
	return stored, nil
}

// ListPending returns one page of the moderation queue.
func (s *ReviewService) ListPending(ctx context.Context, callerID uint, params pagination.Params) ([]*models.Post, pagination.Meta, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, pagination.Meta{}, err
	}

	posts, err := s.postRepo.ListByStatus(ctx, models.PostStatusPending, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.postRepo.CountByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return posts, params.MetaFor(total), nil
}

// ListReviews returns every recorded verdict for a post.
func (s *ReviewService) ListReviews(ctx context.Context, callerID, postID uint) ([]*models.PostReview, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return s.reviewRepo.ListByPost(ctx, postID)
}
