package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/starboost/reviews-backend/internal/models"
)

// Ошибки уровня репозитория заказов.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotCancelable = errors.New("order has tasks in progress")
)

// OrderRepository отвечает за работу с заказами.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// selectOrderColumns — общая часть запросов по заказам: completed_reviews
// всегда выводится из живых статусов заданий, а не из сохранённого счётчика.
const selectOrderColumns = `
	SELECT o.id, o.client_id, o.business_url, o.business_name, o.package_id,
	       o.total_reviews,
	       COALESCE(t.approved, 0) AS completed_reviews,
	       o.status, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN (
		SELECT order_id, COUNT(*) FILTER (WHERE status = 'approved') AS approved
		FROM review_tasks
		GROUP BY order_id
	) t ON t.order_id = o.id
`

// CreateWithTasks сохраняет заказ и все его задания в одной транзакции:
// либо появляются и заказ, и все N заданий, либо ничего.
func (r *OrderRepository) CreateWithTasks(ctx context.Context, order *models.Order, tasks []models.ReviewTask) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("order repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO orders (client_id, business_url, business_name, package_id, total_reviews, completed_reviews, status)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		RETURNING id, created_at, updated_at
	`

	if err = tx.QueryRowxContext(
		ctx,
		query,
		order.ClientID,
		order.BusinessURL,
		order.BusinessName,
		order.PackageID,
		order.TotalReviews,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("order repository: insert order %w", err)
	}

	if len(tasks) > 0 {
		// Batch INSERT для заданий, чтобы не выполнять N отдельных запросов
		taskQuery := `INSERT INTO review_tasks (order_id, status, commission, guidelines) VALUES `
		taskValues := make([]interface{}, 0, len(tasks)*4)

		for i, task := range tasks {
			if i > 0 {
				taskQuery += ", "
			}
			taskQuery += fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
			taskValues = append(taskValues, order.ID, task.Status, task.Commission, pq.Array([]string(task.Guidelines)))
		}

		if _, err = tx.ExecContext(ctx, taskQuery, taskValues...); err != nil {
			return fmt.Errorf("order repository: insert tasks %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order repository: commit %w", err)
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := selectOrderColumns + ` WHERE o.id = $1`
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &order, nil
}

// ListByClient возвращает заказы клиента, новые первыми.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := selectOrderColumns + ` WHERE o.client_id = $1 ORDER BY o.created_at DESC`
	if err := r.db.SelectContext(ctx, &orders, query, clientID); err != nil {
		return nil, fmt.Errorf("order repository: list by client %w", err)
	}
	return orders, nil
}

// ListAll возвращает все заказы (для панели администратора).
func (r *OrderRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := selectOrderColumns + ` ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &orders, query, limit, offset); err != nil {
		return nil, fmt.Errorf("order repository: list all %w", err)
	}
	return orders, nil
}

// ListTasks возвращает задания заказа в порядке создания.
func (r *OrderRepository) ListTasks(ctx context.Context, orderID uuid.UUID) ([]models.ReviewTask, error) {
	var tasks []models.ReviewTask
	query := `
		SELECT id, order_id, intern_id, status, commission, guidelines,
		       assigned_at, completed_at, created_at, updated_at
		FROM review_tasks
		WHERE order_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &tasks, query, orderID); err != nil {
		return nil, fmt.Errorf("order repository: list tasks %w", err)
	}
	return tasks, nil
}

// GetProgress возвращает прогресс заказа, вычисленный из статусов заданий.
func (r *OrderRepository) GetProgress(ctx context.Context, orderID uuid.UUID) (*models.OrderProgress, error) {
	var progress models.OrderProgress
	query := `
		SELECT $1::uuid AS order_id,
		       COUNT(*) AS total_tasks,
		       COUNT(*) FILTER (WHERE status = 'approved') AS approved_tasks,
		       COUNT(*) FILTER (WHERE status = 'submitted') AS submitted_tasks,
		       COUNT(*) FILTER (WHERE status = 'assigned') AS assigned_tasks
		FROM review_tasks
		WHERE order_id = $1
	`
	if err := r.db.GetContext(ctx, &progress, query, orderID); err != nil {
		return nil, fmt.Errorf("order repository: get progress %w", err)
	}
	return &progress, nil
}

// Cancel отменяет заказ клиента вместе с заданиями. Отмена возможна только
// пока ни одно задание не взято в работу; оба обновления идут в одной
// транзакции с условием на текущее состояние.
func (r *OrderRepository) Cancel(ctx context.Context, orderID, clientID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("order repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE orders
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		  AND client_id = $2
		  AND status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM review_tasks
			WHERE order_id = $1 AND status <> 'pending'
		  )
	`
	res, err := tx.ExecContext(ctx, query, orderID, clientID)
	if err != nil {
		return fmt.Errorf("order repository: cancel order %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order repository: cancel rows affected %w", err)
	}
	if affected == 0 {
		var exists bool
		if err = tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND client_id = $2)`, orderID, clientID); err != nil {
			return fmt.Errorf("order repository: cancel check %w", err)
		}
		if !exists {
			err = ErrOrderNotFound
			return err
		}
		err = ErrOrderNotCancelable
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE review_tasks SET status = 'cancelled', updated_at = NOW() WHERE order_id = $1 AND status = 'pending'`,
		orderID); err != nil {
		return fmt.Errorf("order repository: cancel tasks %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order repository: commit %w", err)
	}

	return nil
}

// Stats возвращает сводку по платформе для панели администратора.
func (r *OrderRepository) Stats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders) AS total_orders,
			COUNT(*) FILTER (WHERE t.status = 'pending') AS pending_tasks,
			COUNT(*) FILTER (WHERE t.status = 'assigned') AS assigned_tasks,
			COUNT(*) FILTER (WHERE t.status = 'submitted') AS submitted_tasks,
			COUNT(*) FILTER (WHERE t.status = 'approved') AS approved_tasks,
			COUNT(*) FILTER (WHERE t.status = 'rejected') AS rejected_tasks,
			(SELECT COUNT(*) FROM users WHERE role = 'client') AS total_clients,
			(SELECT COUNT(*) FROM users WHERE role = 'intern') AS total_interns
		FROM review_tasks t
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("order repository: stats %w", err)
	}
	return &stats, nil
}
