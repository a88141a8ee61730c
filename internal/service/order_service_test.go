package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/pkg/apperror"
	"github.com/starboost/reviews-backend/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateWithTasks(ctx context.Context, order *models.Order, tasks []models.ReviewTask) error {
	args := m.Called(ctx, order, tasks)
	if args.Error(0) == nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) GetProgress(ctx context.Context, orderID uuid.UUID) (*models.OrderProgress, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderProgress), args.Error(1)
}

func (m *mockOrderRepo) ListTasks(ctx context.Context, orderID uuid.UUID) ([]models.ReviewTask, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.ReviewTask), args.Error(1)
}

func (m *mockOrderRepo) Cancel(ctx context.Context, orderID, clientID uuid.UUID) error {
	args := m.Called(ctx, orderID, clientID)
	return args.Error(0)
}

func (m *mockOrderRepo) Stats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}

func TestOrderService_CreateOrder_Standard(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	clientID := uuid.New()

	var gotTasks []models.ReviewTask
	repo.On("CreateWithTasks", ctx, mock.AnythingOfType("*models.Order"), mock.AnythingOfType("[]models.ReviewTask")).
		Run(func(args mock.Arguments) {
			gotTasks = args.Get(2).([]models.ReviewTask)
		}).
		Return(nil)

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ClientID:     clientID,
		PackageID:    "standard",
		BusinessURL:  "https://maps.google.com/?cid=12345",
		BusinessName: "Кофейня «北»",
	})

	assert.NoError(t, err)
	assert.Equal(t, 25, order.TotalReviews)
	assert.Equal(t, 0, order.CompletedReviews)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, gotTasks, 25)
	for _, task := range gotTasks {
		assert.Equal(t, models.TaskStatusPending, task.Status)
		assert.InDelta(t, 7.96, task.Commission, 0.001)
		assert.Equal(t, []string(task.Guidelines), models.DefaultGuidelines)
	}
	repo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_UnknownPackage(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     uuid.New(),
		PackageID:    "enterprise",
		BusinessURL:  "https://maps.google.com/?cid=1",
		BusinessName: "Кафе",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "CreateWithTasks")
}

func TestOrderService_CreateOrder_BadBusinessURL(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     uuid.New(),
		PackageID:    "basic",
		BusinessURL:  "https://yelp.com/biz/some-cafe",
		BusinessName: "Кафе",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestOrderService_CreateOrder_EmptyBusinessName(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ClientID:     uuid.New(),
		PackageID:    "basic",
		BusinessURL:  "https://maps.app.goo.gl/abc",
		BusinessName: "   ",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestOrderService_GetOrder_ForeignClientForbidden(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	orderID := uuid.New()
	owner := uuid.New()
	stranger := uuid.New()

	repo.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, ClientID: owner}, nil)

	_, err := svc.GetOrder(ctx, orderID, stranger, models.RoleClient)
	assert.True(t, apperror.IsForbidden(err))

	order, err := svc.GetOrder(ctx, orderID, stranger, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestOrderService_GetOrderDetail(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	orderID := uuid.New()
	clientID := uuid.New()

	repo.On("GetByID", ctx, orderID).Return(&models.Order{ID: orderID, ClientID: clientID, TotalReviews: 10}, nil)
	repo.On("GetProgress", ctx, orderID).Return(&models.OrderProgress{OrderID: orderID, TotalTasks: 10, ApprovedTasks: 3}, nil)
	repo.On("ListTasks", ctx, orderID).Return([]models.ReviewTask{
		{ID: uuid.New(), OrderID: orderID, Status: models.TaskStatusApproved},
		{ID: uuid.New(), OrderID: orderID, Status: models.TaskStatusPending},
	}, nil)

	detail, err := svc.GetOrderDetail(ctx, orderID, clientID, models.RoleClient)
	assert.NoError(t, err)
	assert.Equal(t, orderID, detail.Order.ID)
	assert.Equal(t, 3, detail.Progress.ApprovedTasks)
	assert.Len(t, detail.Tasks, 2)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	orderID := uuid.New()
	repo.On("GetByID", ctx, orderID).Return(nil, repository.ErrOrderNotFound)

	_, err := svc.GetOrder(ctx, orderID, uuid.New(), models.RoleAdmin)
	assert.True(t, apperror.IsNotFound(err))
}

func TestOrderService_CancelOrder_Conflict(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	orderID := uuid.New()
	clientID := uuid.New()
	repo.On("Cancel", ctx, orderID, clientID).Return(repository.ErrOrderNotCancelable)

	err := svc.CancelOrder(ctx, orderID, clientID)
	assert.True(t, apperror.IsConflict(err))
}

func TestOrderService_ListAllOrders_ClampsPagination(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := NewOrderService(repo)
	ctx := context.Background()

	repo.On("ListAll", ctx, 20, 0).Return([]models.Order{}, nil)

	_, err := svc.ListAllOrders(ctx, -5, -10)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestOrderService_ListPackages(t *testing.T) {
	svc := NewOrderService(new(mockOrderRepo))

	packages := svc.ListPackages()
	assert.Len(t, packages, 3)
	assert.Equal(t, "basic", packages[0].ID)
	assert.Equal(t, 10, packages[0].ReviewCount)
	assert.InDelta(t, 99, packages[0].Price, 0.001)
}
