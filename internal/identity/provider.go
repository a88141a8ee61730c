package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Ошибки провайдера идентификации.
var (
	ErrInvalidCredentials = errors.New("identity: неверные учетные данные")
	ErrEmailTaken         = errors.New("identity: email уже зарегистрирован")
	ErrAccountNotFound    = errors.New("identity: учётная запись не найдена")
)

// Account — учётная запись у провайдера идентификации. Метаданные несут
// имя и роль, заданные при регистрации; платформа копирует их в таблицу
// users при первом входе.
type Account struct {
	ID       uuid.UUID         `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

// TokenPair — пара токенов, выданная провайдером.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// Provider описывает внешнего провайдера идентификации. Сервис только
// потребляет его: регистрация, вход, выход и чтение текущего пользователя.
type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Account, *TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*Account, *TokenPair, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*Account, error)
	UpdatePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error
}
