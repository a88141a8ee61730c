package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/starboost/reviews-backend/internal/logger"
	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/pkg/apperror"
	"github.com/starboost/reviews-backend/internal/repository"
	"github.com/starboost/reviews-backend/internal/storage"
	"github.com/starboost/reviews-backend/internal/validation"
)

// TaskRepository описывает взаимодействие сервиса с хранилищем заданий.
type TaskRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewTask, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]models.ReviewTask, error)
	ListByIntern(ctx context.Context, internID uuid.UUID) ([]models.ReviewTask, error)
	Claim(ctx context.Context, taskID, internID uuid.UUID) (*models.ReviewTask, error)
	AttachProof(ctx context.Context, proof *models.ReviewProof) error
	Decide(ctx context.Context, taskID uuid.UUID, approve bool) (*models.ReviewTask, error)
	MarkOrderInProgress(ctx context.Context, orderID uuid.UUID) error
	ListSubmitted(ctx context.Context, limit, offset int) ([]models.SubmittedReview, error)
	GetProofByTaskID(ctx context.Context, taskID uuid.UUID) (*models.ReviewProof, error)
	Earnings(ctx context.Context, internID uuid.UUID) ([]models.EarningEntry, float64, error)
}

// TaskService содержит бизнес-логику выдачи заданий, приёма подтверждений
// и модерации.
type TaskService struct {
	repo    TaskRepository
	blobs   storage.BlobStorage
	timeout time.Duration
}

// NewTaskService создаёт новый сервис заданий.
func NewTaskService(repo TaskRepository, blobs storage.BlobStorage, timeout time.Duration) *TaskService {
	return &TaskService{repo: repo, blobs: blobs, timeout: timeout}
}

// ListAvailable возвращает свободные задания для витрины исполнителя.
func (s *TaskService) ListAvailable(ctx context.Context, limit, offset int) ([]models.ReviewTask, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tasks, err := s.repo.ListAvailable(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить задания")
	}
	return tasks, nil
}

// ListMine возвращает задания исполнителя.
func (s *TaskService) ListMine(ctx context.Context, internID uuid.UUID) ([]models.ReviewTask, error) {
	tasks, err := s.repo.ListByIntern(ctx, internID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить задания")
	}
	return tasks, nil
}

// GetTask возвращает задание. Исполнитель видит свободные задания и свои,
// администратор — любые.
func (s *TaskService) GetTask(ctx context.Context, taskID, requesterID uuid.UUID, requesterRole string) (*models.ReviewTask, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить задание")
	}

	if requesterRole != models.RoleAdmin {
		mine := task.InternID != nil && *task.InternID == requesterID
		free := task.Status == models.TaskStatusPending
		if !mine && !free {
			return nil, apperror.ErrForbidden
		}
	}

	return task, nil
}

// Claim закрепляет свободное задание за исполнителем. При гонке выигрывает
// ровно один, остальные получают CONFLICT. Первое взятое задание переводит
// заказ в работу.
func (s *TaskService) Claim(ctx context.Context, taskID, internID uuid.UUID) (*models.ReviewTask, error) {
	task, err := s.repo.Claim(ctx, taskID, internID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, apperror.ErrTaskNotFound
		case errors.Is(err, repository.ErrTaskNotAvailable):
			return nil, apperror.ErrTaskAlreadyClaimed
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось взять задание")
		}
	}

	if err := s.repo.MarkOrderInProgress(ctx, task.OrderID); err != nil {
		logger.Log.WithError(err).WithField("order_id", task.OrderID).Warn("Не удалось перевести заказ в работу")
	}

	logger.Log.WithField("task_id", taskID).WithField("intern_id", internID).Info("Задание взято в работу")

	return task, nil
}

// SubmitProofInput описывает подтверждение выполненного задания.
type SubmitProofInput struct {
	TaskID        uuid.UUID
	InternID      uuid.UUID
	ReviewContent string
	Screenshot    io.Reader
	Filename      string
	ContentType   string
}

// SubmitProof принимает подтверждение: загружает скриншот во внешнее
// хранилище, затем в одной транзакции сохраняет подтверждение и переводит
// задание assigned -> submitted. Если запись в базу не прошла, загруженный
// файл удаляется.
func (s *TaskService) SubmitProof(ctx context.Context, in SubmitProofInput) (*models.ReviewProof, error) {
	if err := validation.ValidateReviewContent(in.ReviewContent); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Screenshot == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "скриншот обязателен")
	}

	// Состояние проверяется до загрузки, чтобы не заливать файлы впустую.
	// Решающая проверка всё равно выполняется условным UPDATE в транзакции.
	task, err := s.repo.GetByID(ctx, in.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить задание")
	}
	if task.InternID == nil || *task.InternID != in.InternID {
		return nil, apperror.ErrForbidden
	}
	if task.Status != models.TaskStatusAssigned {
		return nil, apperror.New(apperror.ErrCodeConflict, "подтверждение можно отправить только по заданию в работе")
	}

	blobPath := fmt.Sprintf("proofs/%s/%s%s", in.TaskID, uuid.New(), filepath.Ext(in.Filename))

	uploadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	screenshotURL, err := s.blobs.Upload(uploadCtx, blobPath, in.Screenshot, in.ContentType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Wrap(err, apperror.ErrCodeTimeout, "хранилище файлов не ответило вовремя")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeUpload, "не удалось загрузить скриншот")
	}

	proof := &models.ReviewProof{
		TaskID:        in.TaskID,
		InternID:      in.InternID,
		ScreenshotURL: screenshotURL,
		ReviewContent: in.ReviewContent,
	}

	if err := s.repo.AttachProof(ctx, proof); err != nil {
		// Компенсация: файл без записи в базе никому не принадлежит
		deleteCtx, deleteCancel := context.WithTimeout(context.Background(), s.timeout)
		defer deleteCancel()
		if delErr := s.blobs.Delete(deleteCtx, blobPath); delErr != nil {
			logger.Log.WithError(delErr).WithField("path", blobPath).Warn("Не удалось удалить осиротевший скриншот")
		}

		if errors.Is(err, repository.ErrTaskWrongState) {
			return nil, apperror.New(apperror.ErrCodeConflict, "подтверждение по заданию уже отправлено")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось сохранить подтверждение")
	}

	logger.Log.WithField("task_id", in.TaskID).WithField("intern_id", in.InternID).Info("Подтверждение отправлено на модерацию")

	return proof, nil
}

// Decide применяет решение модератора. Одобрение пересчитывает прогресс
// заказа и начисляет комиссию исполнителю атомарно с переходом задания.
func (s *TaskService) Decide(ctx context.Context, taskID uuid.UUID, decision string) (*models.ReviewTask, error) {
	if decision != models.DecisionApprove && decision != models.DecisionReject {
		return nil, apperror.New(apperror.ErrCodeValidation, "решение должно быть approve или reject")
	}

	task, err := s.repo.Decide(ctx, taskID, decision == models.DecisionApprove)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, apperror.ErrTaskNotFound
		case errors.Is(err, repository.ErrTaskWrongState):
			return nil, apperror.New(apperror.ErrCodeConflict, "решение уже принято или задание не на модерации")
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось применить решение")
		}
	}

	logger.Log.WithField("task_id", taskID).WithField("decision", decision).Info("Решение по заданию применено")

	return task, nil
}

// ListSubmitted возвращает очередь модерации.
func (s *TaskService) ListSubmitted(ctx context.Context, limit, offset int) ([]models.SubmittedReview, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.repo.ListSubmitted(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить очередь модерации")
	}
	return reviews, nil
}

// GetProof возвращает подтверждение задания. Доступно исполнителю задания
// и администратору.
func (s *TaskService) GetProof(ctx context.Context, taskID, requesterID uuid.UUID, requesterRole string) (*models.ReviewProof, error) {
	proof, err := s.repo.GetProofByTaskID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrProofNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "подтверждение не найдено")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить подтверждение")
	}

	if requesterRole != models.RoleAdmin && proof.InternID != requesterID {
		return nil, apperror.ErrForbidden
	}

	return proof, nil
}

// Earnings возвращает историю начислений исполнителя и итоговую сумму.
func (s *TaskService) Earnings(ctx context.Context, internID uuid.UUID) ([]models.EarningEntry, float64, error) {
	entries, total, err := s.repo.Earnings(ctx, internID)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить начисления")
	}
	return entries, total, nil
}
