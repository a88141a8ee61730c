package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order описывает покупку клиентом пакета отзывов для одного бизнеса.
type Order struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ClientID         uuid.UUID `db:"client_id" json:"client_id"`
	BusinessURL      string    `db:"business_url" json:"business_url"`
	BusinessName     string    `db:"business_name" json:"business_name"`
	PackageID        string    `db:"package_id" json:"package_id"`
	TotalReviews     int       `db:"total_reviews" json:"total_reviews"`
	CompletedReviews int       `db:"completed_reviews" json:"completed_reviews"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ReviewTask представляет одну единицу работы: написать и разместить один отзыв.
type ReviewTask struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	OrderID     uuid.UUID      `db:"order_id" json:"order_id"`
	InternID    *uuid.UUID     `db:"intern_id" json:"intern_id,omitempty"`
	Status      string         `db:"status" json:"status"`
	Commission  float64        `db:"commission" json:"commission"`
	Guidelines  pq.StringArray `db:"guidelines" json:"guidelines"`
	AssignedAt  *time.Time     `db:"assigned_at" json:"assigned_at,omitempty"`
	CompletedAt *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	// Данные родительского заказа, подтягиваются JOIN-ом для списков заданий.
	BusinessName string `db:"business_name" json:"business_name,omitempty"`
	BusinessURL  string `db:"business_url" json:"business_url,omitempty"`
}

// ReviewProof описывает подтверждение выполненного задания: скриншот и текст отзыва.
// Создаётся один раз при отправке и никогда не изменяется.
type ReviewProof struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TaskID        uuid.UUID `db:"task_id" json:"task_id"`
	InternID      uuid.UUID `db:"intern_id" json:"intern_id"`
	ScreenshotURL string    `db:"screenshot_url" json:"screenshot_url"`
	ReviewContent string    `db:"review_content" json:"review_content"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// OrderProgress содержит прогресс заказа, вычисленный из живых статусов заданий,
// а не из денормализованного счётчика.
type OrderProgress struct {
	OrderID        uuid.UUID `db:"order_id" json:"order_id"`
	TotalTasks     int       `db:"total_tasks" json:"total_tasks"`
	ApprovedTasks  int       `db:"approved_tasks" json:"approved_tasks"`
	SubmittedTasks int       `db:"submitted_tasks" json:"submitted_tasks"`
	AssignedTasks  int       `db:"assigned_tasks" json:"assigned_tasks"`
}

// EarningEntry — строка заработка исполнителя по одному заданию.
type EarningEntry struct {
	TaskID       uuid.UUID  `db:"task_id" json:"task_id"`
	BusinessName string     `db:"business_name" json:"business_name"`
	Commission   float64    `db:"commission" json:"commission"`
	Status       string     `db:"status" json:"status"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// SubmittedReview — задание на модерации вместе с приложенным подтверждением.
type SubmittedReview struct {
	TaskID        uuid.UUID  `db:"task_id" json:"task_id"`
	OrderID       uuid.UUID  `db:"order_id" json:"order_id"`
	InternID      uuid.UUID  `db:"intern_id" json:"intern_id"`
	BusinessName  string     `db:"business_name" json:"business_name"`
	BusinessURL   string     `db:"business_url" json:"business_url"`
	Commission    float64    `db:"commission" json:"commission"`
	ScreenshotURL string     `db:"screenshot_url" json:"screenshot_url"`
	ReviewContent string     `db:"review_content" json:"review_content"`
	SubmittedAt   time.Time  `db:"submitted_at" json:"submitted_at"`
}

// PlatformStats — сводка для панели администратора.
type PlatformStats struct {
	TotalOrders     int `db:"total_orders" json:"total_orders"`
	PendingTasks    int `db:"pending_tasks" json:"pending_tasks"`
	AssignedTasks   int `db:"assigned_tasks" json:"assigned_tasks"`
	SubmittedTasks  int `db:"submitted_tasks" json:"submitted_tasks"`
	ApprovedTasks   int `db:"approved_tasks" json:"approved_tasks"`
	RejectedTasks   int `db:"rejected_tasks" json:"rejected_tasks"`
	TotalClients    int `db:"total_clients" json:"total_clients"`
	TotalInterns    int `db:"total_interns" json:"total_interns"`
}
