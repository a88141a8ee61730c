package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starboost/reviews-backend/internal/dto"
	"github.com/starboost/reviews-backend/internal/http/handlers/common"
	"github.com/starboost/reviews-backend/internal/service"
)

// AdminHandler предоставляет HTTP слой панели администратора:
// все заказы, очередь модерации, решения и статистика.
type AdminHandler struct {
	orders *service.OrderService
	tasks  *service.TaskService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(orders *service.OrderService, tasks *service.TaskService) *AdminHandler {
	return &AdminHandler{orders: orders, tasks: tasks}
}

// ListOrders обрабатывает GET /admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	orders, err := h.orders.ListAllOrders(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(orders, limit, offset))
}

// ListSubmitted обрабатывает GET /admin/reviews — очередь модерации.
func (h *AdminHandler) ListSubmitted(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reviews, err := h.tasks.ListSubmitted(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(reviews, limit, offset))
}

// Decide обрабатывает POST /admin/tasks/:id/decision.
func (h *AdminHandler) Decide(c *gin.Context) {
	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.DecideTaskRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Decide(c.Request.Context(), taskID, req.Decision)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Stats обрабатывает GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
