package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
	listByUserFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	countByUserFn func(context.Context, uint) (int64, error)
	updateFn      func(context.Context, *models.Comment) error
	softDeleteFn  func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *commentRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listByUserFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countByUserFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		softDeleteFn:  func(_ context.Context, _ uint) error { return nil },
	}
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()

	t.Run("blank message", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopPostRepo())
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, PostID: 1, Message: "   ",
		})
		assertValidationError(t, err)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCommentService(noopCommentRepo(), postRepo)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, PostID: 404, Message: "hello",
		})
		assertNotFoundError(t, err)
	})

	t.Run("comment is attributed", func(t *testing.T) {
		t.Parallel()
		var created *models.Comment
		commentRepo := noopCommentRepo()
		commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
			created = c
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo())
		comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 3, PostID: 5, Message: "great read",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(3), comment.CreatedBy)
		assert.Equal(t, uint(5), comment.PostID)
		assert.False(t, comment.IsDeleted)
	})
}

func TestCommentService_GetComment(t *testing.T) {
	t.Parallel()

	existing := func(postID uint, deleted bool) *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, Message: "hello", PostID: postID, IsDeleted: deleted}, nil
		}
		return repo
	}

	t.Run("unknown comment", func(t *testing.T) {
		t.Parallel()
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCommentService(repo, noopPostRepo())
		_, err := svc.GetComment(context.Background(), 5, 404)
		assertNotFoundError(t, err)
	})

	t.Run("deleted comment reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(5, true), noopPostRepo())
		_, err := svc.GetComment(context.Background(), 5, 1)
		assertNotFoundError(t, err)
	})

	t.Run("wrong post reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(5, false), noopPostRepo())
		_, err := svc.GetComment(context.Background(), 6, 1)
		assertNotFoundError(t, err)
	})

	t.Run("visible comment resolves", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(5, false), noopPostRepo())
		comment, err := svc.GetComment(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, "hello", comment.Message)
	})
}

func TestCommentService_UpdateComment(t *testing.T) {
	t.Parallel()

	existing := func(createdBy uint, deleted bool) *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, Message: "original", PostID: 5, CreatedBy: createdBy, IsDeleted: deleted}, nil
		}
		return repo
	}

	t.Run("deleted comment reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(1, true), noopPostRepo())
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 1, PostID: 5, CommentID: 1, Message: "edit",
		})
		assertNotFoundError(t, err)
	})

	t.Run("wrong post reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(1, false), noopPostRepo())
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 1, PostID: 6, CommentID: 1, Message: "edit",
		})
		assertNotFoundError(t, err)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(9, false), noopPostRepo())
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 1, PostID: 5, CommentID: 1, Message: "edit",
		})
		assertForbiddenError(t, err)
	})

	t.Run("edit stamps EditedAt", func(t *testing.T) {
		t.Parallel()
		repo := existing(1, false)
		var saved *models.Comment
		repo.updateFn = func(_ context.Context, c *models.Comment) error {
			saved = c
			return nil
		}
		svc := NewCommentService(repo, noopPostRepo())
		comment, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 1, PostID: 5, CommentID: 1, Message: "edited",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "edited", comment.Message)
		assert.NotNil(t, comment.EditedAt)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()

	existing := func(createdBy uint, deleted bool) *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 5, CreatedBy: createdBy, IsDeleted: deleted}, nil
		}
		return repo
	}

	t.Run("already deleted reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(1, true), noopPostRepo())
		err := svc.DeleteComment(context.Background(), 5, 1, 1)
		assertNotFoundError(t, err)
	})

	t.Run("wrong post reads as not found", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(1, false), noopPostRepo())
		err := svc.DeleteComment(context.Background(), 6, 1, 1)
		assertNotFoundError(t, err)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(9, false), noopPostRepo())
		err := svc.DeleteComment(context.Background(), 5, 1, 1)
		assertForbiddenError(t, err)
	})

	t.Run("owner soft-deletes", func(t *testing.T) {
		t.Parallel()
		repo := existing(1, false)
		softDeleted := false
		repo.softDeleteFn = func(_ context.Context, id uint) error {
			softDeleted = true
			assert.Equal(t, uint(1), id)
			return nil
		}
		svc := NewCommentService(repo, noopPostRepo())
		err := svc.DeleteComment(context.Background(), 5, 1, 1)
		require.NoError(t, err)
		assert.True(t, softDeleted)
	})
}

func TestCommentService_ListByPost(t *testing.T) {
	t.Parallel()

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCommentService(noopCommentRepo(), postRepo)
		_, _, err := svc.ListByPost(context.Background(), 404, pagination.Normalize(1, 10))
		assertNotFoundError(t, err)
	})

	t.Run("pages with metadata", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.listByPostFn = func(_ context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
			assert.Equal(t, uint(5), postID)
			assert.Equal(t, 10, limit)
			assert.Equal(t, 0, offset)
			return []*models.Comment{{ID: 1}, {ID: 2}}, nil
		}
		commentRepo.countByPostFn = func(_ context.Context, _ uint) (int64, error) { return 2, nil }
		svc := NewCommentService(commentRepo, noopPostRepo())

		comments, meta, err := svc.ListByPost(context.Background(), 5, pagination.Normalize(1, 10))
		require.NoError(t, err)
		assert.Len(t, comments, 2)
		assert.Equal(t, 1, meta.TotalPages)
	})
}
