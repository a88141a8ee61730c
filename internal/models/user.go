package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает запись пользователя платформы. Идентификатор совпадает
// с идентификатором учётной записи у провайдера идентификации; строка
// создаётся при первом входе копированием данных профиля провайдера.
type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Role             string    `db:"role" json:"role"`
	BusinessName     *string   `db:"business_name" json:"business_name,omitempty"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	PhoneVerified    *bool     `db:"phone_verified" json:"phone_verified,omitempty"`
	CommissionEarned float64   `db:"commission_earned" json:"commission_earned"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
