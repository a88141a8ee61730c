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

// Ошибки уровня репозитория заданий.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotAvailable = errors.New("task is not available")
	ErrTaskWrongState   = errors.New("task is in wrong state")
	ErrProofNotFound    = errors.New("proof not found")
)

// TaskRepository отвечает за работу с заданиями на отзывы и их подтверждениями.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт новый экземпляр.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const selectTaskColumns = `
	SELECT t.id, t.order_id, t.intern_id, t.status, t.commission, t.guidelines,
	       t.assigned_at, t.completed_at, t.created_at, t.updated_at,
	       o.business_name, o.business_url
	FROM review_tasks t
	JOIN orders o ON o.id = t.order_id
`

// GetByID возвращает задание вместе с данными родительского заказа.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewTask, error) {
	var task models.ReviewTask
	query := selectTaskColumns + ` WHERE t.id = $1`
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get by id %w", err)
	}
	return &task, nil
}

// ListAvailable возвращает свободные задания, старые первыми,
// чтобы заказы закрывались в порядке поступления.
func (r *TaskRepository) ListAvailable(ctx context.Context, limit, offset int) ([]models.ReviewTask, error) {
	var tasks []models.ReviewTask
	query := selectTaskColumns + `
		WHERE t.status = 'pending' AND t.intern_id IS NULL
		ORDER BY t.created_at ASC
		LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &tasks, query, limit, offset); err != nil {
		return nil, fmt.Errorf("task repository: list available %w", err)
	}
	return tasks, nil
}

// ListByIntern возвращает задания исполнителя, новые первыми.
func (r *TaskRepository) ListByIntern(ctx context.Context, internID uuid.UUID) ([]models.ReviewTask, error) {
	var tasks []models.ReviewTask
	query := selectTaskColumns + ` WHERE t.intern_id = $1 ORDER BY t.updated_at DESC`
	if err := r.db.SelectContext(ctx, &tasks, query, internID); err != nil {
		return nil, fmt.Errorf("task repository: list by intern %w", err)
	}
	return tasks, nil
}

// Claim атомарно закрепляет свободное задание за исполнителем. Условие в
// WHERE гарантирует, что при гонке двух исполнителей выиграет ровно один:
// проигравший получит RowsAffected = 0.
func (r *TaskRepository) Claim(ctx context.Context, taskID, internID uuid.UUID) (*models.ReviewTask, error) {
	query := `
		UPDATE review_tasks
		SET intern_id = $2, status = 'assigned', assigned_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND intern_id IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, taskID, internID)
	if err != nil {
		return nil, fmt.Errorf("task repository: claim %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("task repository: claim rows affected %w", err)
	}
	if affected == 0 {
		// Различаем несуществующее задание и уже занятое
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM review_tasks WHERE id = $1)`, taskID); err != nil {
			return nil, fmt.Errorf("task repository: claim check %w", err)
		}
		if !exists {
			return nil, ErrTaskNotFound
		}
		return nil, ErrTaskNotAvailable
	}

	return r.GetByID(ctx, taskID)
}

// AttachProof сохраняет подтверждение и переводит задание assigned -> submitted
// в одной транзакции. Переход выполняется условным UPDATE, поэтому повторная
// отправка или отправка чужого задания откатывает вставку подтверждения.
func (r *TaskRepository) AttachProof(ctx context.Context, proof *models.ReviewProof) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("task repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE review_tasks
		SET status = 'submitted', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND intern_id = $2 AND status = 'assigned'
	`
	res, err := tx.ExecContext(ctx, query, proof.TaskID, proof.InternID)
	if err != nil {
		return fmt.Errorf("task repository: submit transition %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task repository: submit rows affected %w", err)
	}
	if affected == 0 {
		err = ErrTaskWrongState
		return err
	}

	proofQuery := `
		INSERT INTO review_proofs (task_id, intern_id, screenshot_url, review_content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		proofQuery,
		proof.TaskID,
		proof.InternID,
		proof.ScreenshotURL,
		proof.ReviewContent,
	).Scan(&proof.ID, &proof.CreatedAt); err != nil {
		return fmt.Errorf("task repository: insert proof %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("task repository: commit %w", err)
	}

	return nil
}

// Decide выполняет решение модератора по заданию submitted -> approved/rejected.
// При одобрении в той же транзакции пересчитывается прогресс заказа из числа
// одобренных заданий и начисляется комиссия исполнителю. Повторное решение по
// тому же заданию условие WHERE не пропустит.
func (r *TaskRepository) Decide(ctx context.Context, taskID uuid.UUID, approve bool) (*models.ReviewTask, error) {
	newStatus := models.TaskStatusRejected
	if approve {
		newStatus = models.TaskStatusApproved
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("task repository: begin tx %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		orderID    uuid.UUID
		internID   uuid.UUID
		commission float64
	)
	query := `
		UPDATE review_tasks
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'submitted'
		RETURNING order_id, intern_id, commission
	`
	if err = tx.QueryRowxContext(ctx, query, taskID, newStatus).Scan(&orderID, &internID, &commission); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if checkErr := tx.GetContext(ctx, &exists,
				`SELECT EXISTS (SELECT 1 FROM review_tasks WHERE id = $1)`, taskID); checkErr != nil {
				return nil, fmt.Errorf("task repository: decide check %w", checkErr)
			}
			if !exists {
				return nil, ErrTaskNotFound
			}
			return nil, ErrTaskWrongState
		}
		return nil, fmt.Errorf("task repository: decide transition %w", err)
	}

	if approve {
		orderQuery := `
			UPDATE orders o
			SET completed_reviews = t.approved,
			    status = CASE WHEN t.approved >= o.total_reviews THEN 'completed' ELSE 'in-progress' END,
			    updated_at = NOW()
			FROM (
				SELECT COUNT(*) AS approved
				FROM review_tasks
				WHERE order_id = $1 AND status = 'approved'
			) t
			WHERE o.id = $1
		`
		if _, err = tx.ExecContext(ctx, orderQuery, orderID); err != nil {
			return nil, fmt.Errorf("task repository: recompute order %w", err)
		}

		commissionQuery := `UPDATE users SET commission_earned = commission_earned + $2, updated_at = NOW() WHERE id = $1`
		if _, err = tx.ExecContext(ctx, commissionQuery, internID, commission); err != nil {
			return nil, fmt.Errorf("task repository: add commission %w", err)
		}
	} else {
		// Отклонённые задания первый взятый заказ из pending выводит в работу,
		// но счётчик одобрений не меняется
		orderQuery := `
			UPDATE orders
			SET status = 'in-progress', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
		`
		if _, err = tx.ExecContext(ctx, orderQuery, orderID); err != nil {
			return nil, fmt.Errorf("task repository: mark order in progress %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("task repository: commit %w", err)
	}
	committed = true

	return r.GetByID(ctx, taskID)
}

// MarkOrderInProgress переводит заказ pending -> in-progress, когда первое
// задание взято в работу. Повторные вызовы безвредны.
func (r *TaskRepository) MarkOrderInProgress(ctx context.Context, orderID uuid.UUID) error {
	query := `UPDATE orders SET status = 'in-progress', updated_at = NOW() WHERE id = $1 AND status = 'pending'`
	if _, err := r.db.ExecContext(ctx, query, orderID); err != nil {
		return fmt.Errorf("task repository: mark order in progress %w", err)
	}
	return nil
}

// ListSubmitted возвращает очередь модерации: задания со статусом submitted
// вместе с подтверждениями, старые первыми.
func (r *TaskRepository) ListSubmitted(ctx context.Context, limit, offset int) ([]models.SubmittedReview, error) {
	var reviews []models.SubmittedReview
	query := `
		SELECT t.id AS task_id, t.order_id, t.intern_id, o.business_name, o.business_url,
		       t.commission, p.screenshot_url, p.review_content, p.created_at AS submitted_at
		FROM review_tasks t
		JOIN orders o ON o.id = t.order_id
		JOIN review_proofs p ON p.task_id = t.id
		WHERE t.status = 'submitted'
		ORDER BY p.created_at ASC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &reviews, query, limit, offset); err != nil {
		return nil, fmt.Errorf("task repository: list submitted %w", err)
	}
	return reviews, nil
}

// GetProofByTaskID возвращает подтверждение задания.
func (r *TaskRepository) GetProofByTaskID(ctx context.Context, taskID uuid.UUID) (*models.ReviewProof, error) {
	var proof models.ReviewProof
	query := `
		SELECT id, task_id, intern_id, screenshot_url, review_content, created_at
		FROM review_proofs
		WHERE task_id = $1
	`
	if err := r.db.GetContext(ctx, &proof, query, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}
		return nil, fmt.Errorf("task repository: get proof %w", err)
	}
	return &proof, nil
}

// Earnings возвращает историю заработка исполнителя: одобренные и ожидающие
// решения задания, плюс итоговую сумму по одобренным.
func (r *TaskRepository) Earnings(ctx context.Context, internID uuid.UUID) ([]models.EarningEntry, float64, error) {
	var entries []models.EarningEntry
	query := `
		SELECT t.id AS task_id, o.business_name, t.commission, t.status, t.completed_at
		FROM review_tasks t
		JOIN orders o ON o.id = t.order_id
		WHERE t.intern_id = $1 AND t.status IN ('approved', 'submitted')
		ORDER BY t.updated_at DESC
	`
	if err := r.db.SelectContext(ctx, &entries, query, internID); err != nil {
		return nil, 0, fmt.Errorf("task repository: earnings %w", err)
	}

	var total float64
	totalQuery := `SELECT COALESCE(SUM(commission), 0) FROM review_tasks WHERE intern_id = $1 AND status = 'approved'`
	if err := r.db.GetContext(ctx, &total, totalQuery, internID); err != nil {
		return nil, 0, fmt.Errorf("task repository: earnings total %w", err)
	}

	return entries, total, nil
}
