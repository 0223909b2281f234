package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ErrActiveKeyExists is returned by CreateExclusive when the user already
// holds an unexpired ACTIVE key.
var ErrActiveKeyExists = errors.New("an active api key already exists")

// ApiKeyRepository defines the interface for api key data operations
type ApiKeyRepository interface {
	CreateExclusive(ctx context.Context, apiKey *models.ApiKey) error
	GetByKey(ctx context.Context, key string) (*models.ApiKey, error)
	Deactivate(ctx context.Context, id uint) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new api key repository
func NewApiKeyRepository(db *gorm.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

// CreateExclusive enforces the one-active-key-per-user invariant inside a
// single transaction: an unexpired ACTIVE key aborts with ErrActiveKeyExists,
// an expired ACTIVE key is rolled over to INACTIVE before the insert.
func (r *apiKeyRepository) CreateExclusive(ctx context.Context, apiKey *models.ApiKey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ApiKey
		err := tx.Where("created_by = ? AND status = ?", apiKey.CreatedBy, models.ApiKeyStatusActive).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil {
			if !existing.Expired(time.Now()) {
				return ErrActiveKeyExists
			}
			if err := tx.Model(&existing).Update("status", models.ApiKeyStatusInactive).Error; err != nil {
				return err
			}
		}

		return tx.Create(apiKey).Error
	})
}

func (r *apiKeyRepository) GetByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	var apiKey models.ApiKey
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

func (r *apiKeyRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("id = ?", id).
		Update("status", models.ApiKeyStatusInactive).Error
}
