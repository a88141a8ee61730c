package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/starboost/reviews-backend/internal/identity"
	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/pkg/apperror"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateIfAbsent(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name string, businessName, phone *string) error {
	args := m.Called(ctx, id, name, businessName, phone)
	return args.Error(0)
}

func newTestAuthService(users *mockUserRepo) *AuthService {
	provider := identity.NewLocalProvider("test-secret", 15*time.Minute)
	return NewAuthService(provider, users, time.Second)
}

func TestAuthService_SignUp_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)
	ctx := context.Background()

	users.On("CreateIfAbsent", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.SignUp(ctx, SignUpInput{
		Email:    "client@example.com",
		Password: "Sup3rSecret",
		Name:     "Анна",
		Role:     models.RoleClient,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.User.ID)
	assert.Equal(t, models.RoleClient, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)

	// Токен локального провайдера должен проходить локальную проверку
	parser := identity.NewTokenParser("test-secret")
	userID, role, err := parser.Parse(result.TokenPair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
	assert.Equal(t, models.RoleClient, role)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)
	ctx := context.Background()

	users.On("CreateIfAbsent", ctx, mock.Anything).Return(nil)

	in := SignUpInput{
		Email:    "dup@example.com",
		Password: "Sup3rSecret",
		Name:     "Анна",
		Role:     models.RoleIntern,
	}

	_, err := svc.SignUp(ctx, in)
	assert.NoError(t, err)

	_, err = svc.SignUp(ctx, in)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_SignUp_BadRole(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "admin@example.com",
		Password: "Sup3rSecret",
		Name:     "Анна",
		Role:     models.RoleAdmin,
	})

	assert.True(t, apperror.IsValidation(err))
	users.AssertNotCalled(t, "CreateIfAbsent")
}

func TestAuthService_SignUp_WeakPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    "client@example.com",
		Password: "short",
		Name:     "Анна",
		Role:     models.RoleClient,
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)
	ctx := context.Background()

	users.On("CreateIfAbsent", ctx, mock.Anything).Return(nil)

	_, err := svc.SignUp(ctx, SignUpInput{
		Email:    "intern@example.com",
		Password: "Sup3rSecret",
		Name:     "Пётр",
		Role:     models.RoleIntern,
	})
	assert.NoError(t, err)

	_, err = svc.SignIn(ctx, "intern@example.com", "WrongPass1")
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_SignIn_CreatesRowOnFirstLogin(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestAuthService(users)
	ctx := context.Background()

	created := 0
	users.On("CreateIfAbsent", ctx, mock.Anything).
		Run(func(args mock.Arguments) { created++ }).
		Return(nil)

	_, err := svc.SignUp(ctx, SignUpInput{
		Email:    "intern2@example.com",
		Password: "Sup3rSecret",
		Name:     "Пётр",
		Role:     models.RoleIntern,
	})
	assert.NoError(t, err)

	result, err := svc.SignIn(ctx, "intern2@example.com", "Sup3rSecret")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleIntern, result.User.Role)
	assert.Equal(t, 2, created)
}

// downProvider имитирует недоступный провайдер идентификации.
type downProvider struct{}

func (p *downProvider) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*identity.Account, *identity.TokenPair, error) {
	return nil, nil, errors.New("connection refused")
}

func (p *downProvider) SignIn(ctx context.Context, email, password string) (*identity.Account, *identity.TokenPair, error) {
	return nil, nil, errors.New("connection refused")
}

func (p *downProvider) SignOut(ctx context.Context, accessToken string) error {
	return errors.New("connection refused")
}

func (p *downProvider) CurrentUser(ctx context.Context, accessToken string) (*identity.Account, error) {
	return nil, errors.New("connection refused")
}

func (p *downProvider) UpdatePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	return errors.New("connection refused")
}

func TestAuthService_SignIn_ProviderDownIsStoreError(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewAuthService(&downProvider{}, users, time.Second)

	_, err := svc.SignIn(context.Background(), "intern@example.com", "Sup3rSecret")

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeStore, appErr.Code)
}
