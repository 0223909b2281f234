package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ListByCreator(ctx context.Context, userID uint, limit, offset int) ([]*models.Category, error)
	CountByCreator(ctx context.Context, userID uint) (int64, error)
	ExistsByName(ctx context.Context, name string, userID uint) (bool, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if err == nil {
		cache.InvalidateCategories(ctx, category.CreatedBy)
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListByCreator(ctx context.Context, userID uint, limit, offset int) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) CountByCreator(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("created_by = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *categoryRepository) ExistsByName(ctx context.Context, name string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("category_name = ? AND created_by = ?", name, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return err
	}
	cache.InvalidateCategories(ctx, category.CreatedBy)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&category).Error; err != nil {
		return err
	}
	cache.InvalidateCategories(ctx, category.CreatedBy)
	return nil
}
