package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// apiKeyRepoStub is a stub for repository.ApiKeyRepository.
type apiKeyRepoStub struct {
	createExclusiveFn func(context.Context, *models.ApiKey) error
	getByKeyFn        func(context.Context, string) (*models.ApiKey, error)
	deactivateFn      func(context.Context, uint) error
}

func (s *apiKeyRepoStub) CreateExclusive(ctx context.Context, apiKey *models.ApiKey) error {
	return s.createExclusiveFn(ctx, apiKey)
}
func (s *apiKeyRepoStub) GetByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	return s.getByKeyFn(ctx, key)
}
func (s *apiKeyRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}

func noopApiKeyRepo() *apiKeyRepoStub {
	return &apiKeyRepoStub{
		createExclusiveFn: func(_ context.Context, _ *models.ApiKey) error { return nil },
		getByKeyFn:        func(_ context.Context, _ string) (*models.ApiKey, error) { return &models.ApiKey{}, nil },
		deactivateFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

func TestApiKeyService_CreateApiKey(t *testing.T) {
	t.Parallel()

	t.Run("mints an active key with expiry", func(t *testing.T) {
		t.Parallel()
		var created *models.ApiKey
		repo := noopApiKeyRepo()
		repo.createExclusiveFn = func(_ context.Context, key *models.ApiKey) error {
			created = key
			return nil
		}
		svc := NewApiKeyService(repo, 30*24*time.Hour)

		key, err := svc.CreateApiKey(context.Background(), CreateApiKeyInput{UserID: 7})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.ApiKeyStatusActive, key.Status)
		assert.Equal(t, uint(7), key.CreatedBy)
		assert.Len(t, key.Key, 64) // 32 random bytes, hex encoded
		require.NotNil(t, key.EndedAt)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *key.EndedAt, time.Minute)
	})

	t.Run("existing active key is a conflict", func(t *testing.T) {
		t.Parallel()
		repo := noopApiKeyRepo()
		repo.createExclusiveFn = func(_ context.Context, _ *models.ApiKey) error {
			return repository.ErrActiveKeyExists
		}
		svc := NewApiKeyService(repo, 0)

		_, err := svc.CreateApiKey(context.Background(), CreateApiKeyInput{UserID: 7})
		assertConflictError(t, err)
	})

	t.Run("two mints yield distinct keys", func(t *testing.T) {
		t.Parallel()
		svc := NewApiKeyService(noopApiKeyRepo(), 0)
		first, err := svc.CreateApiKey(context.Background(), CreateApiKeyInput{UserID: 7})
		require.NoError(t, err)
		second, err := svc.CreateApiKey(context.Background(), CreateApiKeyInput{UserID: 7})
		require.NoError(t, err)
		assert.NotEqual(t, first.Key, second.Key)
	})
}

func TestApiKeyService_VerifyKey(t *testing.T) {
	t.Parallel()

	keyFor := func(userID uint, status string, endedAt *time.Time) *apiKeyRepoStub {
		repo := noopApiKeyRepo()
		repo.getByKeyFn = func(_ context.Context, raw string) (*models.ApiKey, error) {
			return &models.ApiKey{ID: 1, Key: raw, CreatedBy: userID, Status: status, EndedAt: endedAt}, nil
		}
		return repo
	}

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	t.Run("unknown key is unauthorized", func(t *testing.T) {
		t.Parallel()
		repo := noopApiKeyRepo()
		repo.getByKeyFn = func(_ context.Context, _ string) (*models.ApiKey, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewApiKeyService(repo, 0)
		_, err := svc.VerifyKey(context.Background(), "nope", 7)
		assertUnauthorizedError(t, err)
	})

	t.Run("another user's key is unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := NewApiKeyService(keyFor(99, models.ApiKeyStatusActive, &future), 0)
		_, err := svc.VerifyKey(context.Background(), "abc", 7)
		assertUnauthorizedError(t, err)
	})

	t.Run("inactive key is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewApiKeyService(keyFor(7, models.ApiKeyStatusInactive, &future), 0)
		_, err := svc.VerifyKey(context.Background(), "abc", 7)
		assertForbiddenError(t, err)
	})

	t.Run("expired key is deactivated and forbidden", func(t *testing.T) {
		t.Parallel()
		repo := keyFor(7, models.ApiKeyStatusActive, &past)
		deactivated := false
		repo.deactivateFn = func(_ context.Context, id uint) error {
			deactivated = true
			assert.Equal(t, uint(1), id)
			return nil
		}
		svc := NewApiKeyService(repo, 0)
		_, err := svc.VerifyKey(context.Background(), "abc", 7)
		assertForbiddenError(t, err)
		assert.True(t, deactivated)
	})

	t.Run("valid key resolves", func(t *testing.T) {
		t.Parallel()
		svc := NewApiKeyService(keyFor(7, models.ApiKeyStatusActive, &future), 0)
		apiKey, err := svc.VerifyKey(context.Background(), "abc", 7)
		require.NoError(t, err)
		assert.Equal(t, uint(7), apiKey.CreatedBy)
	})

	t.Run("key without expiry never expires", func(t *testing.T) {
		t.Parallel()
		svc := NewApiKeyService(keyFor(7, models.ApiKeyStatusActive, nil), 0)
		_, err := svc.VerifyKey(context.Background(), "abc", 7)
		assert.NoError(t, err)
	})
}
