package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and token refresh.
type AuthService struct {
	userRepo repository.UserRepository
	images   *ImageService
	cfg      *config.Config
}

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	ProfileImage *UploadImageInput
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenPair carries the signed session tokens returned on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func NewAuthService(userRepo repository.UserRepository, images *ImageService, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, images: images, cfg: cfg}
}

// Register creates a new USER account. When a profile image is attached it is
// uploaded first and removed again if the user row cannot be created.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewConflictError("A user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewConflictError("A user with this username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var profileURL, profileObjectID string
	if in.ProfileImage != nil {
		if s.images == nil {
			return nil, models.NewInternalError(errors.New("image storage is unavailable"))
		}
		var err error
		profileObjectID, profileURL, err = s.images.Upload(ctx, *in.ProfileImage)
		if err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.rollbackImage(ctx, profileObjectID)
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashed),
		FullName:       in.FullName,
		Role:           models.RoleUser,
		ProfileImage:   profileURL,
		ProfileImageID: profileObjectID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.rollbackImage(ctx, profileObjectID)
		return nil, err
	}
	return user, nil
}

func (s *AuthService) rollbackImage(ctx context.Context, objectID string) {
	if objectID == "" || s.images == nil {
		return
	}
	// Rollback is best effort; the caller's error takes precedence.
	_ = s.images.Delete(ctx, objectID)
}

// Login verifies credentials and issues an access/refresh token pair. The
// refresh token is persisted so it can be revoked server side.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, *TokenPair, error) {
	if in.Email == "" || in.Password == "" {
		return nil, nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid email or password")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token against the persisted copy and rotates
// both tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, models.NewUnauthorizedError("Refresh token required")
	}

	userID, err := s.parseToken(refreshToken, s.cfg.RefreshTokenSecret)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewUnauthorizedError("Invalid or expired refresh token")
		}
		return nil, nil, err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, nil, models.NewUnauthorizedError("Refresh token has been revoked")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the persisted refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "")
}

func (s *AuthService) issueTokens(ctx context.Context, userID uint) (*TokenPair, error) {
	access, err := s.signToken(userID, s.cfg.AccessTokenSecret, s.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.signToken(userID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signToken(userID uint, secret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing subject")
	}
	var id uint
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid subject")
	}
	return id, nil
}
