package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starboost/reviews-backend/internal/dto"
	"github.com/starboost/reviews-backend/internal/http/handlers/common"
	"github.com/starboost/reviews-backend/internal/service"
)

// ProfileHandler предоставляет HTTP слой для работы с профилем пользователя.
type ProfileHandler struct {
	auth *service.AuthService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: auth}
}

// Me обрабатывает GET /profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update обрабатывает PUT /profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), service.UpdateProfileInput{
		UserID:       userID,
		Name:         req.Name,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdatePassword обрабатывает PUT /profile/password.
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	token, err := common.CurrentAccessToken(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpdatePasswordRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.UpdatePassword(c.Request.Context(), token, req.CurrentPassword, req.NewPassword); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "пароль обновлён", nil)
}
