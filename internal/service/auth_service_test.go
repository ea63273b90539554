package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/hewor/agency-backend/internal/models"
	"github.com/hewor/agency-backend/internal/pkg/apperror"
	"github.com/hewor/agency-backend/internal/repository"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewAuthService(users, newTestTokenManager())
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, "ivan_petrov", "ivan@example.com", "strongpassword", "")

	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "strongpassword", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("strongpassword")))
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewAuthService(users, newTestTokenManager())

	_, err := svc.Register(context.Background(), "ivan_petrov", "ivan@example.com", "short", "")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	users := new(mockUserStore)
	svc := NewAuthService(users, newTestTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("strongpassword"), bcrypt.DefaultCost)
	stored := &models.User{
		ID:           uuid.New(),
		Username:     "ivan_petrov",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
	}
	users.On("GetByUsername", ctx, "ivan_petrov").Return(stored, nil)

	user, pair, err := svc.Login(ctx, "ivan_petrov", "strongpassword")

	assert.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewAuthService(users, newTestTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("strongpassword"), bcrypt.DefaultCost)
	users.On("GetByUsername", ctx, "ivan_petrov").Return(&models.User{
		ID:           uuid.New(),
		Username:     "ivan_petrov",
		PasswordHash: string(hash),
	}, nil)

	_, _, err := svc.Login(ctx, "ivan_petrov", "wrong")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	users := new(mockUserStore)
	svc := NewAuthService(users, newTestTokenManager())
	ctx := context.Background()

	users.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound)

	_, _, err := svc.Login(ctx, "ghost", "whatever")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tokens := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleFreelancer}

	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := tokens.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleFreelancer, role)
}
