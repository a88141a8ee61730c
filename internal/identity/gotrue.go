package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoTrueProvider — клиент hosted-провайдера идентификации с GoTrue-совместимым
// REST API (Supabase Auth). Все операции — обычные HTTP запросы с ограниченным
// таймаутом; токены провайдера проверяются локально через TokenParser.
type GoTrueProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoTrueProvider создаёт клиент провайдера.
func NewGoTrueProvider(baseURL, apiKey string, timeout time.Duration) *GoTrueProvider {
	return &GoTrueProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type gotrueUser struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	UserMetadata map[string]string `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	User         gotrueUser `json:"user"`
}

type gotrueError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// SignUp регистрирует учётную запись у провайдера.
func (p *GoTrueProvider) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Account, *TokenPair, error) {
	payload := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}

	var session gotrueSession
	if err := p.post(ctx, "/signup", payload, &session); err != nil {
		if isConflict(err) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	account, err := toAccount(session.User)
	if err != nil {
		return nil, nil, err
	}
	return account, toTokenPair(session), nil
}

// SignIn выполняет вход по паролю (password grant).
func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Account, *TokenPair, error) {
	payload := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var session gotrueSession
	if err := p.post(ctx, "/token?grant_type=password", payload, &session); err != nil {
		if isUnauthorized(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	account, err := toAccount(session.User)
	if err != nil {
		return nil, nil, err
	}
	return account, toTokenPair(session), nil
}

// SignOut отзывает сессию провайдера.
func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	req, err := p.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readError(resp)
	}
	return nil
}

// CurrentUser возвращает учётную запись по access токену.
func (p *GoTrueProvider) CurrentUser(ctx context.Context, accessToken string) (*Account, error) {
	req, err := p.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, ErrAccountNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, readError(resp)
	}

	var user gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("identity: не удалось прочитать ответ провайдера: %w", err)
	}

	return toAccount(user)
}

// UpdatePassword меняет пароль учётной записи. Провайдер требует
// действующий access токен; текущий пароль дополнительно проверяется входом.
func (p *GoTrueProvider) UpdatePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	account, err := p.CurrentUser(ctx, accessToken)
	if err != nil {
		return err
	}
	if _, _, err := p.SignIn(ctx, account.Email, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	payload := map[string]interface{}{"password": newPassword}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("identity: не удалось сериализовать запрос: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPut, "/user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readError(resp)
	}
	return nil
}

func (p *GoTrueProvider) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("identity: не удалось создать запрос: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	return req, nil
}

func (p *GoTrueProvider) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("identity: не удалось сериализовать запрос: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: не удалось прочитать ответ провайдера: %w", err)
	}
	return nil
}

// statusError сохраняет HTTP статус ответа провайдера для классификации.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("identity: провайдер вернул %d: %s", e.status, e.message)
}

func readError(resp *http.Response) error {
	var gerr gotrueError
	_ = json.NewDecoder(resp.Body).Decode(&gerr)
	message := gerr.Message
	if message == "" {
		message = gerr.ErrorDescription
	}
	return &statusError{status: resp.StatusCode, message: message}
}

func isConflict(err error) bool {
	var serr *statusError
	return errors.As(err, &serr) && (serr.status == http.StatusConflict || serr.status == http.StatusUnprocessableEntity)
}

func isUnauthorized(err error) bool {
	var serr *statusError
	return errors.As(err, &serr) && (serr.status == http.StatusUnauthorized || serr.status == http.StatusBadRequest)
}

func wrapTransport(err error) error {
	return fmt.Errorf("identity: запрос к провайдеру не выполнен: %w", err)
}

func toAccount(user gotrueUser) (*Account, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("identity: некорректный идентификатор учётной записи: %w", err)
	}

	metadata := user.UserMetadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &Account{ID: id, Email: user.Email, Metadata: metadata}, nil
}

func toTokenPair(session gotrueSession) *TokenPair {
	return &TokenPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    time.Duration(session.ExpiresIn) * time.Second,
	}
}
