package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/config"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

const refreshTokenTTL = 30 * 24 * time.Hour

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	repos *repository.Repositories
	txm   TxManager
	audit AuditLogger
	cfg   *config.Config
}

// NewAuthService creates a new authentication service
func NewAuthService(repos *repository.Repositories, txm TxManager, audit AuditLogger, cfg *config.Config) *AuthService {
	return &AuthService{repos: repos, txm: txm, audit: audit, cfg: cfg}
}

// RegisterInput holds the self-registration payload
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenPair is the issued credential set
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates a self-service account. The role is always the
// default regardless of anything in the request.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(strings.TrimSpace(input.Name)) < 2 {
		return nil, NewValidationError("nome deve ter pelo menos 2 caracteres")
	}
	if len(input.Password) < 8 {
		return nil, NewValidationError("senha deve ter pelo menos 8 caracteres")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		EncryptedPassword: hash,
		Role:              models.DefaultRole,
		Active:            true,
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.User.WithTx(tx).Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrDuplicate
			}
			return err
		}
		return s.audit.Log(ctx, tx, user.ID, models.AuditActionCreate, models.AuditEntityUser, EntityID(user.ID), map[string]interface{}{
			"email": user.Email,
			"role":  user.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a token pair. Deactivated
// accounts are rejected with the same error as a bad password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.repos.User.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !VerifyPassword(user.EncryptedPassword, password) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	expiresAt := time.Now().Add(refreshTokenTTL)

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		rt := &models.RefreshToken{
			UserID:    user.ID,
			Token:     refresh,
			ExpiresAt: &expiresAt,
		}
		if err := s.repos.RefreshToken.WithTx(tx).Create(ctx, rt); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, user.ID, models.AuditActionLogin, models.AuditEntityUser, EntityID(user.ID), nil)
	})
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, user, nil
}

// Refresh rotates a refresh token and issues a new access token
func (s *AuthService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	stored, err := s.repos.RefreshToken.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if stored.IsExpired() {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repos.User.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(refreshTokenTTL)

	// Rotate: the old token is single-use.
	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		repo := s.repos.RefreshToken.WithTx(tx)
		if err := repo.Delete(ctx, stored.Token); err != nil {
			return err
		}
		return repo.Create(ctx, &models.RefreshToken{
			UserID:    user.ID,
			Token:     refresh,
			ExpiresAt: &expiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Logout revokes the refresh token and records the action
func (s *AuthService) Logout(ctx context.Context, actorID uint, token string) error {
	return s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if token != "" {
			if err := s.repos.RefreshToken.WithTx(tx).Delete(ctx, token); err != nil {
				return err
			}
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionLogout, models.AuditEntityUser, EntityID(actorID), nil)
	})
}

// CurrentUser returns the authenticated account
func (s *AuthService) CurrentUser(ctx context.Context, actorID uint) (*models.User, error) {
	user, err := s.repos.User.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpiredTokens removes expired refresh tokens. Invoked by the
// background worker.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repos.RefreshToken.DeleteExpired(ctx)
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a bcrypt hash with a plaintext candidate
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
