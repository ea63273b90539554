package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hewor/agency-backend/internal/logger"
	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/repository"
	"github.com/hewor/agency-backend/internal/validation"
)

// UserStore описывает хранилище учётных записей.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService содержит бизнес-логику аутентификации.
type AuthService struct {
	users  UserStore
	tokens *TokenManager
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users UserStore, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register создаёт учётную запись с хешированным паролем.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if len(password) < 8 {
		return nil, apperror.New(apperror.ErrCodeValidation, "пароль должен быть не менее 8 символов")
	}
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleAdmin && role != models.RoleFreelancer {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("некорректная роль %q", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: хеширование пароля: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Infof("auth: создан пользователь %s (%s)", user.Username, user.Role)
	return user, nil
}

// Login проверяет учётные данные и выпускает пару токенов.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperror.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperror.ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("auth service: выпуск токенов: %w", err)
	}

	return user, pair, nil
}

// EnsureAdmin создаёт учётную запись администратора, если её ещё нет.
// Вызывается при старте сервера из конфигурации окружения.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	if _, err := s.Register(ctx, username, username+"@local", password, models.RoleAdmin); err != nil {
		return fmt.Errorf("auth service: создание администратора: %w", err)
	}
	return nil
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	return s.tokens.GeneratePair(user)
}
