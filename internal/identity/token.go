package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenParser проверяет access токены, выданные провайдером идентификации.
// Провайдер подписывает их HS256 общим секретом, поэтому проверка выполняется
// локально, без обращения к провайдеру на каждый запрос.
type TokenParser struct {
	secret []byte
}

// NewTokenParser создаёт парсер с общим секретом провайдера.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse извлекает идентификатор пользователя и роль из access токена.
// Роль берётся из клейма role, либо из user_metadata — оба формата
// встречаются у hosted-провайдеров.
func (p *TokenParser) Parse(token string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = jwt.ErrTokenInvalidClaims
		}
		return uuid.Nil, "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	role, _ := claims["role"].(string)
	if role == "" {
		if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
			role, _ = meta["role"].(string)
		}
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", err
	}

	return userID, role, nil
}

// issueToken выпускает access токен от имени локального dev-провайдера
// в том же формате, что и hosted-провайдер.
func issueToken(secret []byte, account *Account, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  account.ID.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"role": account.Metadata["role"],
		"user_metadata": map[string]interface{}{
			"name": account.Metadata["name"],
			"role": account.Metadata["role"],
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
