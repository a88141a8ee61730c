package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/starboost/reviews-backend/internal/logger"
	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/pkg/apperror"
	"github.com/starboost/reviews-backend/internal/repository"
	"github.com/starboost/reviews-backend/internal/validation"
)

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	CreateWithTasks(ctx context.Context, order *models.Order, tasks []models.ReviewTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Order, error)
	GetProgress(ctx context.Context, orderID uuid.UUID) (*models.OrderProgress, error)
	ListTasks(ctx context.Context, orderID uuid.UUID) ([]models.ReviewTask, error)
	Cancel(ctx context.Context, orderID, clientID uuid.UUID) error
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// OrderService содержит бизнес-логику работы с заказами на отзывы.
type OrderService struct {
	repo OrderRepository
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// ListPackages возвращает фиксированный каталог пакетов.
func (s *OrderService) ListPackages() []models.ReviewPackage {
	return models.Packages
}

// CreateOrderInput описывает входные данные покупки пакета.
type CreateOrderInput struct {
	ClientID     uuid.UUID
	PackageID    string
	BusinessURL  string
	BusinessName string
}

// CreateOrder создаёт заказ и порождает по одному заданию на каждый отзыв
// пакета. Комиссия задания фиксируется ценой пакета на момент покупки и не
// меняется при последующих изменениях каталога.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	pkg, ok := models.PackageByID(in.PackageID)
	if !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный пакет: "+in.PackageID)
	}
	if err := validation.ValidateBusinessURL(in.BusinessURL); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	businessName := strings.TrimSpace(in.BusinessName)
	if err := validation.ValidateNonEmpty("название бизнеса", businessName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("название бизнеса", businessName, 0, validation.MaxBusinessNameLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	order := &models.Order{
		ClientID:     in.ClientID,
		BusinessURL:  strings.TrimSpace(in.BusinessURL),
		BusinessName: businessName,
		PackageID:    pkg.ID,
		TotalReviews: pkg.ReviewCount,
		Status:       models.OrderStatusPending,
	}

	commission := pkg.Commission()
	tasks := make([]models.ReviewTask, pkg.ReviewCount)
	for i := range tasks {
		tasks[i] = models.ReviewTask{
			Status:     models.TaskStatusPending,
			Commission: commission,
			Guidelines: models.DefaultGuidelines,
		}
	}

	if err := s.repo.CreateWithTasks(ctx, order, tasks); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось создать заказ")
	}

	logger.Log.WithField("order_id", order.ID).
		WithField("package_id", pkg.ID).
		WithField("tasks", len(tasks)).
		Info("Создан заказ на отзывы")

	return order, nil
}

// GetOrder возвращает заказ. Клиент видит только свои заказы,
// администратор — любые.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить заказ")
	}

	if requesterRole != models.RoleAdmin && order.ClientID != requesterID {
		return nil, apperror.ErrForbidden
	}

	return order, nil
}

// ListMyOrders возвращает заказы клиента.
func (s *OrderService) ListMyOrders(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить заказы")
	}
	return orders, nil
}

// ListAllOrders возвращает все заказы для панели администратора.
func (s *OrderService) ListAllOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить заказы")
	}
	return orders, nil
}

// OrderDetail объединяет заказ, его прогресс и список его заданий.
type OrderDetail struct {
	Order    *models.Order         `json:"order"`
	Progress *models.OrderProgress `json:"progress"`
	Tasks    []models.ReviewTask   `json:"tasks"`
}

// GetOrderDetail возвращает заказ вместе с прогрессом и заданиями. Права
// проверяются один раз, на сам заказ.
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*OrderDetail, error) {
	order, err := s.GetOrder(ctx, orderID, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.GetProgress(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить прогресс")
	}

	tasks, err := s.repo.ListTasks(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить задания заказа")
	}

	return &OrderDetail{Order: order, Progress: progress, Tasks: tasks}, nil
}

// GetProgress возвращает прогресс заказа, вычисленный из статусов заданий.
func (s *OrderService) GetProgress(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*models.OrderProgress, error) {
	if _, err := s.GetOrder(ctx, orderID, requesterID, requesterRole); err != nil {
		return nil, err
	}

	progress, err := s.repo.GetProgress(ctx, orderID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить прогресс")
	}
	return progress, nil
}

// CancelOrder отменяет заказ клиента, пока ни одно задание не взято в работу.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, clientID uuid.UUID) error {
	if err := s.repo.Cancel(ctx, orderID, clientID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return apperror.ErrOrderNotFound
		case errors.Is(err, repository.ErrOrderNotCancelable):
			return apperror.New(apperror.ErrCodeConflict, "заказ нельзя отменить: задания уже в работе")
		default:
			return apperror.Wrap(err, apperror.ErrCodeStore, "не удалось отменить заказ")
		}
	}

	logger.Log.WithField("order_id", orderID).Info("Заказ отменён")
	return nil
}

// Stats возвращает сводку по платформе.
func (s *OrderService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStore, "не удалось получить статистику")
	}
	return stats, nil
}
