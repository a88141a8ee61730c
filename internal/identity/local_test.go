package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newProvider() *LocalProvider {
	return NewLocalProvider("unit-test-secret", 15*time.Minute)
}

func TestLocalProvider_SignUpAndSignIn(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	account, pair, err := p.SignUp(ctx, "Intern@Example.com", "Sup3rSecret", map[string]string{
		"name": "Пётр",
		"role": "intern",
	})
	assert.NoError(t, err)
	assert.Equal(t, "intern@example.com", account.Email)
	assert.NotEmpty(t, pair.AccessToken)

	// Повторная регистрация того же email
	_, _, err = p.SignUp(ctx, "intern@example.com", "An0therPass", nil)
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Вход с верным и неверным паролем
	signed, _, err := p.SignIn(ctx, "intern@example.com", "Sup3rSecret")
	assert.NoError(t, err)
	assert.Equal(t, account.ID, signed.ID)

	_, _, err = p.SignIn(ctx, "intern@example.com", "WrongPass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = p.SignIn(ctx, "ghost@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProvider_TokenRoundTrip(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	account, pair, err := p.SignUp(ctx, "client@example.com", "Sup3rSecret", map[string]string{
		"name": "Анна",
		"role": "client",
	})
	assert.NoError(t, err)

	parser := NewTokenParser("unit-test-secret")
	userID, role, err := parser.Parse(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, account.ID, userID)
	assert.Equal(t, "client", role)

	// Чужой секрет токен не проходит
	badParser := NewTokenParser("other-secret")
	_, _, err = badParser.Parse(pair.AccessToken)
	assert.Error(t, err)
}

func TestLocalProvider_CurrentUser(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	account, pair, err := p.SignUp(ctx, "client@example.com", "Sup3rSecret", map[string]string{"role": "client"})
	assert.NoError(t, err)

	current, err := p.CurrentUser(ctx, pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, account.ID, current.ID)

	_, err = p.CurrentUser(ctx, "garbage-token")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLocalProvider_UpdatePassword(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, pair, err := p.SignUp(ctx, "client@example.com", "Sup3rSecret", map[string]string{"role": "client"})
	assert.NoError(t, err)

	err = p.UpdatePassword(ctx, pair.AccessToken, "WrongPass1", "N3wPassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = p.UpdatePassword(ctx, pair.AccessToken, "Sup3rSecret", "N3wPassword")
	assert.NoError(t, err)

	_, _, err = p.SignIn(ctx, "client@example.com", "N3wPassword")
	assert.NoError(t, err)
}
