package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/starboost/reviews-backend/internal/models"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateIfAbsent создаёт запись пользователя, если её ещё нет.
// Идентификатор приходит от провайдера идентификации, поэтому повторный
// вход того же пользователя — ожидаемый случай, а не ошибка.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, role, business_name, phone, phone_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(
		ctx, query,
		user.ID, user.Name, user.Email, user.Role, user.BusinessName, user.Phone, user.PhoneVerified,
	); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}

	created, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, role, business_name, phone, phone_verified, commission_earned, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name string, businessName, phone *string) error {
	query := `
		UPDATE users
		SET name = $2,
			business_name = $3,
			phone = $4,
			updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, name, businessName, phone)
	if err != nil {
		return fmt.Errorf("user repository: update profile %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update profile rows affected %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}
