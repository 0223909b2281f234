package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// ApiKeyService issues and verifies bearer API keys. A user holds at most one
// ACTIVE key at a time.
type ApiKeyService struct {
	apiKeyRepo repository.ApiKeyRepository
	keyTTL     time.Duration
}

type CreateApiKeyInput struct {
	UserID uint
}

func NewApiKeyService(apiKeyRepo repository.ApiKeyRepository, keyTTL time.Duration) *ApiKeyService {
	if keyTTL <= 0 {
		keyTTL = 30 * 24 * time.Hour
	}
	return &ApiKeyService{apiKeyRepo: apiKeyRepo, keyTTL: keyTTL}
}

func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CreateApiKey mints a new ACTIVE key. An unexpired ACTIVE key is a conflict;
// an expired one is rolled over to INACTIVE in the same transaction as the
// insert.
func (s *ApiKeyService) CreateApiKey(ctx context.Context, in CreateApiKeyInput) (*models.ApiKey, error) {
	key, err := generateKey()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	endedAt := time.Now().Add(s.keyTTL)
	apiKey := &models.ApiKey{
		Key:       key,
		CreatedBy: in.UserID,
		Status:    models.ApiKeyStatusActive,
		EndedAt:   &endedAt,
	}

	if err := s.apiKeyRepo.CreateExclusive(ctx, apiKey); err != nil {
		if errors.Is(err, repository.ErrActiveKeyExists) {
			return nil, models.NewConflictError("You already have an active API key")
		}
		return nil, err
	}
	return apiKey, nil
}

// VerifyKey resolves a bearer key for the given user. Unknown or foreign keys
// are Unauthorized; an expired key is deactivated and reported Forbidden.
func (s *ApiKeyService) VerifyKey(ctx context.Context, rawKey string, userID uint) (*models.ApiKey, error) {
	apiKey, err := s.apiKeyRepo.GetByKey(ctx, rawKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid API key")
		}
		return nil, err
	}

	if apiKey.CreatedBy != userID {
		return nil, models.NewUnauthorizedError("Invalid API key")
	}
	if apiKey.Status != models.ApiKeyStatusActive {
		return nil, models.NewForbiddenError("API key is no longer active")
	}
	if apiKey.Expired(time.Now()) {
		// Lazy expiry: flip the stale key so the next create succeeds.
		if err := s.apiKeyRepo.Deactivate(ctx, apiKey.ID); err != nil {
			return nil, err
		}
		return nil, models.NewForbiddenError("API key has expired")
	}

	return apiKey, nil
}
