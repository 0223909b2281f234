package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getBySlugFn      func(context.Context, string) (*models.Post, error)
	listByStatusFn   func(context.Context, string, int, int) ([]*models.Post, error)
	countByStatusFn  func(context.Context, string) (int64, error)
	listByCreatorFn  func(context.Context, uint, int, int) ([]*models.Post, error)
	countByCreatorFn func(context.Context, uint) (int64, error)
	updateFn         func(context.Context, *models.Post) error
	updateStatusFn   func(context.Context, uint, string) error
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Post, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *postRepoStub) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.countByStatusFn(ctx, status)
}
func (s *postRepoStub) ListByCreator(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByCreatorFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) CountByCreator(ctx context.Context, userID uint) (int64, error) {
	return s.countByCreatorFn(ctx, userID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getBySlugFn:      func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listByStatusFn:   func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByStatusFn:  func(_ context.Context, _ string) (int64, error) { return 0, nil },
		listByCreatorFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countByCreatorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:         func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn:   func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn         func(context.Context, *models.Category) error
	getByIDFn        func(context.Context, uint) (*models.Category, error)
	listByCreatorFn  func(context.Context, uint, int, int) ([]*models.Category, error)
	countByCreatorFn func(context.Context, uint) (int64, error)
	existsByNameFn   func(context.Context, string, uint) (bool, error)
	updateFn         func(context.Context, *models.Category) error
	deleteFn         func(context.Context, uint) error
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) ListByCreator(ctx context.Context, userID uint, limit, offset int) ([]*models.Category, error) {
	return s.listByCreatorFn(ctx, userID, limit, offset)
}
func (s *categoryRepoStub) CountByCreator(ctx context.Context, userID uint) (int64, error) {
	return s.countByCreatorFn(ctx, userID)
}
func (s *categoryRepoStub) ExistsByName(ctx context.Context, name string, userID uint) (bool, error) {
	return s.existsByNameFn(ctx, name, userID)
}
func (s *categoryRepoStub) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn:         func(_ context.Context, _ *models.Category) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Category, error) { return &models.Category{ID: id}, nil },
		listByCreatorFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Category, error) { return nil, nil },
		countByCreatorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		existsByNameFn:   func(_ context.Context, _ string, _ uint) (bool, error) { return false, nil },
		updateFn:         func(_ context.Context, _ *models.Category) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
	}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "NOT_FOUND")
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "CONFLICT")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "UNAUTHORIZED")
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	slug := slugify("  My First   Post  ", now)
	assert.Equal(t, "my-first-post-"+strconv.FormatInt(now.UnixMilli(), 10), slug)
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), noopCategoryRepo(), nil)
		_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Description: "body"})
		assertValidationError(t, err)
	})

	t.Run("missing description", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), noopCategoryRepo(), nil)
		_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Title: "Hello"})
		assertValidationError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()
		categoryRepo := noopCategoryRepo()
		categoryRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewPostService(noopPostRepo(), categoryRepo, nil)
		cid := uint(9)
		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			UserID: 1, Title: "Hello", Description: "body", CategoryID: &cid,
		})
		assertNotFoundError(t, err)
	})

	t.Run("new post starts pending with derived slug", func(t *testing.T) {
		t.Parallel()
		var created *models.Post
		postRepo := noopPostRepo()
		postRepo.createFn = func(_ context.Context, p *models.Post) error {
			created = p
			return nil
		}
		svc := NewPostService(postRepo, noopCategoryRepo(), nil)
		post, err := svc.CreatePost(context.Background(), CreatePostInput{
			UserID: 7, Title: "A Grand Title", Description: "body",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.PostStatusPending, post.Status)
		assert.Equal(t, uint(7), post.CreatedBy)
		assert.True(t, strings.HasPrefix(post.Slug, "a-grand-title-"), "slug %q", post.Slug)
		suffix := strings.TrimPrefix(post.Slug, "a-grand-title-")
		_, err = strconv.ParseInt(suffix, 10, 64)
		assert.NoError(t, err, "slug suffix should be a millisecond timestamp")
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	ownedPost := func(status string) *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Old Title", Slug: "old-title-1", Status: status, CreatedBy: 1}, nil
		}
		return repo
	}

	t.Run("approved posts are locked for everyone", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(ownedPost(models.PostStatusApproved), noopCategoryRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 1, UserRole: models.RoleUser, PostID: 1, Title: "New",
		})
		assertForbiddenError(t, err)
	})

	t.Run("admins cannot author-edit even their own posts", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(ownedPost(models.PostStatusPending), noopCategoryRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 1, UserRole: models.RoleAdmin, PostID: 1, Title: "New",
		})
		assertForbiddenError(t, err)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(ownedPost(models.PostStatusPending), noopCategoryRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 2, UserRole: models.RoleUser, PostID: 1, Title: "New",
		})
		assertForbiddenError(t, err)
	})

	t.Run("title change regenerates slug", func(t *testing.T) {
		t.Parallel()
		repo := ownedPost(models.PostStatusPending)
		var saved *models.Post
		repo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := NewPostService(repo, noopCategoryRepo(), nil)
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 1, UserRole: models.RoleUser, PostID: 1, Title: "Fresh Words",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Fresh Words", post.Title)
		assert.True(t, strings.HasPrefix(post.Slug, "fresh-words-"), "slug %q", post.Slug)
	})

	t.Run("rejected posts remain editable", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(ownedPost(models.PostStatusRejected), noopCategoryRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: 1, UserRole: models.RoleUser, PostID: 1, Description: "reworked",
		})
		assert.NoError(t, err)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	ownedPost := func(status string) *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Status: status, CreatedBy: 1}, nil
		}
		return repo
	}

	t.Run("non-owner forbidden regardless of status", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{models.PostStatusPending, models.PostStatusApproved, models.PostStatusRejected} {
			svc := NewPostService(ownedPost(status), noopCategoryRepo(), nil)
			err := svc.DeletePost(context.Background(), DeletePostInput{
				UserID: 2, UserRole: models.RoleUser, PostID: 1,
			})
			assertForbiddenError(t, err)
		}
	})

	t.Run("owner can delete an approved post", func(t *testing.T) {
		t.Parallel()
		repo := ownedPost(models.PostStatusApproved)
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo, noopCategoryRepo(), nil)
		err := svc.DeletePost(context.Background(), DeletePostInput{
			UserID: 1, UserRole: models.RoleUser, PostID: 1,
		})
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("missing post yields not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewPostService(repo, noopCategoryRepo(), nil)
		err := svc.DeletePost(context.Background(), DeletePostInput{
			UserID: 1, UserRole: models.RoleUser, PostID: 404,
		})
		assertNotFoundError(t, err)
	})
}
