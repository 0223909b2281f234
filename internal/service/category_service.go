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

// CategoryService manages the per-creator category trees.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateCategoryInput struct {
	UserID       uint
	CategoryName string
	ParentID     *uint
}

type UpdateCategoryInput struct {
	UserID       uint
	CategoryID   uint
	CategoryName string
	ParentID     *uint
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, isAdmin: isAdmin}
}

func (s *CategoryService) requireAdmin(ctx context.Context, userID uint) error {
	if s.isAdmin == nil {
		return models.NewForbiddenError("Only admins can manage categories")
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Only admins can manage categories")
	}
	return nil
}

// CreateCategory creates a category owned by the caller. Admin only; the
// name must be unique among the caller's own categories.
func (s *CategoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	if in.CategoryName == "" {
		return nil, models.NewValidationError("Category name is required")
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, in.CategoryName, in.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("A category with this name already exists")
	}

	if in.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Category", *in.ParentID)
			}
			return nil, err
		}
	}

	category := &models.Category{
		CategoryName: in.CategoryName,
		ParentID:     in.ParentID,
		CreatedBy:    in.UserID,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// categoryPage is the cached representation of one listing page.
type categoryPage struct {
	Categories []*models.Category `json:"categories"`
	Meta       pagination.Meta    `json:"meta"`
}

// ListCategories returns the caller's categories one page at a time. Pages
// are served cache-aside; every category write invalidates them.
func (s *CategoryService) ListCategories(ctx context.Context, userID uint, params pagination.Params) ([]*models.Category, pagination.Meta, error) {
	key := cache.CategoryListKey(userID, params.Page, params.Limit)

	var page categoryPage
	if cache.GetJSON(ctx, key, &page) {
		return page.Categories, page.Meta, nil
	}

	categories, err := s.categoryRepo.ListByCreator(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.categoryRepo.CountByCreator(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	meta := params.MetaFor(total)
	cache.SetJSON(ctx, key, categoryPage{Categories: categories, Meta: meta}, cache.CategoryListTTL)
	return categories, meta, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, in UpdateCategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", in.CategoryID)
		}
		return nil, err
	}

	if category.CreatedBy != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own categories")
	}

	if in.CategoryName != "" && in.CategoryName != category.CategoryName {
		exists, err := s.categoryRepo.ExistsByName(ctx, in.CategoryName, in.UserID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.NewConflictError("A category with this name already exists")
		}
		category.CategoryName = in.CategoryName
	}
	if in.ParentID != nil {
		category.ParentID = in.ParentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID, userID uint) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Category", categoryID)
		}
		return err
	}

	if category.CreatedBy != userID {
		return models.NewForbiddenError("You can only delete your own categories")
	}

	return s.categoryRepo.Delete(ctx, categoryID)
}
