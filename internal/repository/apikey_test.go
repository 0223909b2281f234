package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApiKeyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestApiKeyRepository_CreateExclusive(t *testing.T) {
	t.Run("creates when no key exists", func(t *testing.T) {
		repo := NewApiKeyRepository(setupApiKeyDB(t))

		err := repo.CreateExclusive(context.Background(), &models.ApiKey{
			Key: "fresh", CreatedBy: 1, Status: models.ApiKeyStatusActive,
		})
		assert.NoError(t, err)
	})

	t.Run("unexpired active key aborts", func(t *testing.T) {
		db := setupApiKeyDB(t)
		repo := NewApiKeyRepository(db)

		future := time.Now().Add(time.Hour)
		require.NoError(t, db.Create(&models.ApiKey{
			Key: "current", CreatedBy: 1, Status: models.ApiKeyStatusActive, EndedAt: &future,
		}).Error)

		err := repo.CreateExclusive(context.Background(), &models.ApiKey{
			Key: "next", CreatedBy: 1, Status: models.ApiKeyStatusActive,
		})
		assert.ErrorIs(t, err, ErrActiveKeyExists)

		var count int64
		require.NoError(t, db.Model(&models.ApiKey{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("expired active key is rolled over", func(t *testing.T) {
		db := setupApiKeyDB(t)
		repo := NewApiKeyRepository(db)

		past := time.Now().Add(-time.Hour)
		require.NoError(t, db.Create(&models.ApiKey{
			Key: "stale", CreatedBy: 1, Status: models.ApiKeyStatusActive, EndedAt: &past,
		}).Error)

		err := repo.CreateExclusive(context.Background(), &models.ApiKey{
			Key: "next", CreatedBy: 1, Status: models.ApiKeyStatusActive,
		})
		require.NoError(t, err)

		var stale models.ApiKey
		require.NoError(t, db.Where("key = ?", "stale").First(&stale).Error)
		assert.Equal(t, models.ApiKeyStatusInactive, stale.Status)

		var next models.ApiKey
		require.NoError(t, db.Where("key = ?", "next").First(&next).Error)
		assert.Equal(t, models.ApiKeyStatusActive, next.Status)
	})

	t.Run("another user's active key does not block", func(t *testing.T) {
		db := setupApiKeyDB(t)
		repo := NewApiKeyRepository(db)

		future := time.Now().Add(time.Hour)
		require.NoError(t, db.Create(&models.ApiKey{
			Key: "theirs", CreatedBy: 2, Status: models.ApiKeyStatusActive, EndedAt: &future,
		}).Error)

		err := repo.CreateExclusive(context.Background(), &models.ApiKey{
			Key: "mine", CreatedBy: 1, Status: models.ApiKeyStatusActive,
		})
		assert.NoError(t, err)
	})
}
