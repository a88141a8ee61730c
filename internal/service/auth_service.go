package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starboost/reviews-backend/internal/identity"
	"github.com/starboost/reviews-backend/internal/logger"
	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/pkg/apperror"
	"github.com/starboost/reviews-backend/internal/repository"
	"github.com/starboost/reviews-backend/internal/validation"
)

// UserRepository описывает взаимодействие сервиса с хранилищем пользователей.
type UserRepository interface {
	CreateIfAbsent(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, businessName, phone *string) error
}

// AuthService делегирует аутентификацию внешнему провайдеру идентификации
// и поддерживает локальную таблицу users синхронной с его учётными записями.
type AuthService struct {
	provider identity.Provider
	users    UserRepository
	timeout  time.Duration
}

// NewAuthService создаёт новый сервис.
func NewAuthService(provider identity.Provider, users UserRepository, timeout time.Duration) *AuthService {
	return &AuthService{provider: provider, users: users, timeout: timeout}
}

// SignUpInput описывает входные данные регистрации.
type SignUpInput struct {
	Email        string
	Password     string
	Name         string
	Role         string
	BusinessName *string
}

// AuthResult — результат входа или регистрации.
type AuthResult struct {
	User      *models.User        `json:"user"`
	TokenPair *identity.TokenPair `json:"tokens"`
}

// SignUp регистрирует учётную запись у провайдера и создаёт строку пользователя.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Role != models.RoleClient && in.Role != models.RoleIntern {
		return nil, apperror.New(apperror.ErrCodeValidation, "роль должна быть client или intern")
	}
	if in.Role == models.RoleClient && in.BusinessName != nil {
		if err := validation.ValidateLength("название бизнеса", *in.BusinessName, 0, validation.MaxBusinessNameLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	metadata := map[string]string{
		"name": strings.TrimSpace(in.Name),
		"role": in.Role,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, tokens, err := s.provider.SignUp(callCtx, strings.ToLower(strings.TrimSpace(in.Email)), in.Password, metadata)
	if err != nil {
		return nil, classifyIdentityError(err, "регистрация")
	}

	user := &models.User{
		ID:           account.ID,
		Name:         metadata["name"],
		Email:        account.Email,
		Role:         in.Role,
		BusinessName: in.BusinessName,
	}
	if err := s.users.CreateIfAbsent(ctx, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось сохранить пользователя")
	}

	logger.Log.WithField("user_id", user.ID).WithField("role", user.Role).Info("Пользователь зарегистрирован")

	return &AuthResult{User: user, TokenPair: tokens}, nil
}

// SignIn выполняет вход через провайдера. Строка пользователя создаётся при
// первом входе копированием профиля провайдера, повторные входы её не трогают.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if password == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "пароль обязателен")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, tokens, err := s.provider.SignIn(callCtx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return nil, classifyIdentityError(err, "вход")
	}

	role := account.Metadata["role"]
	if _, ok := models.ValidRoles[role]; !ok {
		role = models.RoleIntern
	}

	user := &models.User{
		ID:    account.ID,
		Name:  account.Metadata["name"],
		Email: account.Email,
		Role:  role,
	}
	if err := s.users.CreateIfAbsent(ctx, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось сохранить пользователя")
	}

	return &AuthResult{User: user, TokenPair: tokens}, nil
}

// SignOut аннулирует сессию у провайдера.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.SignOut(callCtx, accessToken); err != nil {
		return classifyIdentityError(err, "выход")
	}
	return nil
}

// Me возвращает профиль текущего пользователя из локальной таблицы.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить пользователя")
	}
	return user, nil
}

// UpdateProfileInput описывает изменяемые поля профиля.
type UpdateProfileInput struct {
	UserID       uuid.UUID
	Name         string
	BusinessName *string
	Phone        *string
}

// UpdateProfile обновляет профиль пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.BusinessName != nil {
		if err := validation.ValidateLength("название бизнеса", *in.BusinessName, 0, validation.MaxBusinessNameLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	if err := s.users.UpdateProfile(ctx, in.UserID, strings.TrimSpace(in.Name), in.BusinessName, in.Phone); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось обновить профиль")
	}

	return s.Me(ctx, in.UserID)
}

// UpdatePassword меняет пароль у провайдера после проверки текущего.
func (s *AuthService) UpdatePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.UpdatePassword(callCtx, accessToken, currentPassword, newPassword); err != nil {
		return classifyIdentityError(err, "смена пароля")
	}
	return nil
}

// classifyIdentityError переводит ошибки провайдера в коды платформы.
func classifyIdentityError(err error, op string) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return apperror.ErrInvalidCredentials
	case errors.Is(err, identity.ErrEmailTaken):
		return apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	case errors.Is(err, identity.ErrAccountNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(err, apperror.ErrCodeTimeout, "провайдер идентификации не ответил вовремя")
	default:
		return apperror.Wrap(err, apperror.ErrCodeStore, "провайдер идентификации недоступен: "+op)
	}
}
