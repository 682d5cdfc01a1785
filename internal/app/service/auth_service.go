package service

import (
	"context"
	"errors"
	"time"

	"github.com/avdbroek/plekwijzer-backend/config"
	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/avdbroek/plekwijzer-backend/pkg/redis"
	"github.com/avdbroek/plekwijzer-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(email, password, displayName string) (*model.User, error)
	Login(email, password string) (*util.TokenPair, *model.User, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	UpdateFeedCities(userID uint, cityIDs []int64) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.JWTConfig) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) Register(email, password, displayName string) (*model.User, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*util.TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role),
		s.cfg.Secret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("user logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return tokens, user, nil
}

// Logout blacklists the access token until it would have expired.
// Without redis this is a no-op and the token simply ages out.
func (s *authService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return redis.BlacklistToken(ctx, token, ttl)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.cfg.Secret)
	if err != nil {
		return nil, err
	}

	revoked, err := redis.IsTokenBlacklisted(ctx, refreshToken)
	if err == nil && revoked {
		return nil, util.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return util.GenerateTokenPair(user.ID, user.Email, string(user.Role),
		s.cfg.Secret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateFeedCities replaces the user's followed cities. Feed connections
// opened after this pick up the new set.
func (s *authService) UpdateFeedCities(userID uint, cityIDs []int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.FeedCityIDs = cityIDs
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("feed cities updated", map[string]interface{}{
		"user_id": userID,
		"cities":  len(cityIDs),
	})
	return user, nil
}
