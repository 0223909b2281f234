package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// PostService implements post authoring. Posts enter the editorial pipeline
// as PENDING and become immutable to their author once APPROVED.
type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	images       *ImageService
}

type CreatePostInput struct {
	UserID      uint
	Title       string
	Description string
	CategoryID  *uint
	Banner      *UploadImageInput
}

type UpdatePostInput struct {
	UserID      uint
	UserRole    string
	PostID      uint
	Title       string
	Description string
	CategoryID  *uint
	Banner      *UploadImageInput
}

type DeletePostInput struct {
	UserID   uint
	UserRole string
	PostID   uint
}

// approvedPage is the cached representation of one public listing page.
type approvedPage struct {
	Posts []*models.Post  `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	images *ImageService,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		images:       images,
	}
}

// slugify derives a URL slug from the title: lowercased, whitespace runs
// collapsed to hyphens, with a millisecond timestamp suffix so two posts with
// the same title never collide.
func slugify(title string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTitleLen = 300

	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}

	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Category", *in.CategoryID)
			}
			return nil, err
		}
	}

	var bannerURL, bannerObjectID string
	if in.Banner != nil {
		if s.images == nil {
			return nil, models.NewInternalError(errors.New("image storage is unavailable"))
		}
		var err error
		bannerObjectID, bannerURL, err = s.images.Upload(ctx, *in.Banner)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	post := &models.Post{
		Title:         in.Title,
		Description:   in.Description,
		BannerImage:   bannerURL,
		BannerImageID: bannerObjectID,
		Slug:          slugify(in.Title, now),
		Status:        models.PostStatusPending,
		PostedAt:      now,
		CategoryID:    in.CategoryID,
		CreatedBy:     in.UserID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if bannerObjectID != "" {
			_ = s.images.Delete(ctx, bannerObjectID)
		}
		return nil, err
	}
	cache.InvalidateApprovedPosts(ctx)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, err
	}
	return post, nil
}

// ListApproved returns one page of the public feed. Pages are served
// cache-aside; every post or moderation write invalidates them.
func (s *PostService) ListApproved(ctx context.Context, params pagination.Params) ([]*models.Post, pagination.Meta, error) {
	key := cache.ApprovedPostsKey(params.Page, params.Limit)

	var page approvedPage
	if cache.GetJSON(ctx, key, &page) {
		return page.Posts, page.Meta, nil
	}

	posts, err := s.postRepo.ListByStatus(ctx, models.PostStatusApproved, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.postRepo.CountByStatus(ctx, models.PostStatusApproved)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	meta := params.MetaFor(total)
	cache.SetJSON(ctx, key, approvedPage{Posts: posts, Meta: meta}, cache.PostListTTL)
	return posts, meta, nil
}

// ListByCreator returns the caller's own posts in every status.
func (s *PostService) ListByCreator(ctx context.Context, userID uint, params pagination.Params) ([]*models.Post, pagination.Meta, error) {
	posts, err := s.postRepo.ListByCreator(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.postRepo.CountByCreator(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return posts, params.MetaFor(total), nil
}

// UpdatePost applies author edits. Only the creator may edit, only while the
// post has not been approved, and only with the USER role: admins moderate
// through reviews, never through author-side edits.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if in.UserRole != models.RoleUser {
		return nil, models.NewForbiddenError("Only authors can edit posts")
	}
	if post.CreatedBy != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if post.Status == models.PostStatusApproved {
		return nil, models.NewForbiddenError("Approved posts can no longer be edited")
	}

	if in.Title != "" && in.Title != post.Title {
		post.Title = in.Title
		post.Slug = slugify(in.Title, time.Now())
	}
	if in.Description != "" {
		post.Description = in.Description
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Category", *in.CategoryID)
			}
			return nil, err
		}
		post.CategoryID = in.CategoryID
	}

	oldBannerID := post.BannerImageID
	var newBannerID string
	if in.Banner != nil {
		if s.images == nil {
			return nil, models.NewInternalError(errors.New("image storage is unavailable"))
		}
		objectID, url, err := s.images.Upload(ctx, *in.Banner)
		if err != nil {
			return nil, err
		}
		newBannerID = objectID
		post.BannerImage = url
		post.BannerImageID = objectID
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if newBannerID != "" {
			_ = s.images.Delete(ctx, newBannerID)
		}
		return nil, err
	}

	if newBannerID != "" && oldBannerID != "" && oldBannerID != newBannerID {
		_ = s.images.Delete(ctx, oldBannerID)
	}
	return post, nil
}

// DeletePost removes the author's post. Deletion has no status restriction:
// even an APPROVED post can be withdrawn by its creator.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", in.PostID)
		}
		return err
	}

	if in.UserRole != models.RoleUser {
		return models.NewForbiddenError("Only authors can delete posts")
	}
	if post.CreatedBy != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	if post.BannerImageID != "" && s.images != nil {
		_ = s.images.Delete(ctx, post.BannerImageID)
	}
	return nil
}
