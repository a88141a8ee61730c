package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider — провайдер идентификации для development и тестов.
// Хранит учётные записи в памяти процесса, пароли хеширует bcrypt-ом
// и выпускает токены того же формата, что и hosted-провайдер, поэтому
// остальной код от выбора провайдера не зависит.
type LocalProvider struct {
	mu       sync.RWMutex
	accounts map[string]*localAccount

	secret   []byte
	tokenTTL time.Duration
}

type localAccount struct {
	account      Account
	passwordHash []byte
}

// NewLocalProvider создаёт локальный провайдер.
func NewLocalProvider(secret string, tokenTTL time.Duration) *LocalProvider {
	return &LocalProvider{
		accounts: make(map[string]*localAccount),
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// SignUp регистрирует новую учётную запись.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Account, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	stored := &localAccount{
		account: Account{
			ID:       uuid.New(),
			Email:    email,
			Metadata: meta,
		},
		passwordHash: hash,
	}
	p.accounts[email] = stored

	pair, err := p.issuePair(&stored.account)
	if err != nil {
		return nil, nil, err
	}

	account := stored.account
	return &account, pair, nil
}

// SignIn выполняет вход по паролю.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Account, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.RLock()
	stored, exists := p.accounts[email]
	p.mu.RUnlock()

	if !exists {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := p.issuePair(&stored.account)
	if err != nil {
		return nil, nil, err
	}

	account := stored.account
	return &account, pair, nil
}

// SignOut для локального провайдера — no-op: выданные токены не отзываются,
// а просто истекают.
func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	return ctx.Err()
}

// CurrentUser возвращает учётную запись по access токену.
func (p *LocalProvider) CurrentUser(ctx context.Context, accessToken string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := TokenParser{secret: p.secret}
	userID, _, err := parser.Parse(accessToken)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, stored := range p.accounts {
		if stored.account.ID == userID {
			account := stored.account
			return &account, nil
		}
	}

	return nil, ErrAccountNotFound
}

// UpdatePassword меняет пароль после проверки текущего.
func (p *LocalProvider) UpdatePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	account, err := p.CurrentUser(ctx, accessToken)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stored, exists := p.accounts[account.Email]
	if !exists {
		return ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	stored.passwordHash = hash

	return nil
}

func (p *LocalProvider) issuePair(account *Account) (*TokenPair, error) {
	access, err := issueToken(p.secret, account, p.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken: access,
		// Локальный провайдер не поддерживает обновление сессии.
		RefreshToken: "",
		ExpiresIn:    p.tokenTTL,
	}, nil
}
