package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for post review data operations
type ReviewRepository interface {
	Upsert(ctx context.Context, review *models.PostReview) error
	GetByReviewerAndPost(ctx context.Context, reviewer, postID uint) (*models.PostReview, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.PostReview, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Upsert inserts the review or overwrites the reviewer's previous verdict for
// the same post. ON CONFLICT keeps the operation atomic under concurrent
// re-reviews; CURRENT_TIMESTAMP works on both PostgreSQL and SQLite.
func (r *reviewRepository) Upsert(ctx context.Context, review *models.PostReview) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO post_reviews (reviewer, post_id, comment, rating, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (reviewer, post_id) DO UPDATE SET
		   comment = EXCLUDED.comment,
		   rating = EXCLUDED.rating,
		   status = EXCLUDED.status,
		   updated_at = CURRENT_TIMESTAMP`,
		review.Reviewer, review.PostID, review.Comment, review.Rating, review.Status,
	).Error
}

func (r *reviewRepository) GetByReviewerAndPost(ctx context.Context, reviewer, postID uint) (*models.PostReview, error) {
	var review models.PostReview
	err := r.db.WithContext(ctx).
		Where("reviewer = ? AND post_id = ?", reviewer, postID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByPost(ctx context.Context, postID uint) ([]*models.PostReview, error) {
	var reviews []*models.PostReview
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("updated_at DESC").
		Find(&reviews).Error
	return reviews, err
}
