package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starboost/reviews-backend/internal/dto"
	"github.com/starboost/reviews-backend/internal/http/handlers/common"
	"github.com/starboost/reviews-backend/internal/service"
)

// OrderHandler предоставляет HTTP слой для каталога пакетов и заказов клиента.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler создаёт хэндлер.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListPackages обрабатывает GET /packages. Каталог публичный.
func (h *OrderHandler) ListPackages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packages": h.orders.ListPackages()})
}

// Create обрабатывает POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		ClientID:     clientID,
		PackageID:    req.PackageID,
		BusinessURL:  req.BusinessURL,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListMine обрабатывает GET /orders.
func (h *OrderHandler) ListMine(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	orders, err := h.orders.ListMyOrders(c.Request.Context(), clientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get обрабатывает GET /orders/:id, возвращая заказ вместе с прогрессом.
func (h *OrderHandler) Get(c *gin.Context) {
	requesterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	detail, err := h.orders.GetOrderDetail(c.Request.Context(), orderID, requesterID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Progress обрабатывает GET /orders/:id/progress.
func (h *OrderHandler) Progress(c *gin.Context) {
	requesterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	progress, err := h.orders.GetProgress(c.Request.Context(), orderID, requesterID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Cancel обрабатывает DELETE /orders/:id.
func (h *OrderHandler) Cancel(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.orders.CancelOrder(c.Request.Context(), orderID, clientID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "заказ отменён", nil)
}
