package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/starboost/reviews-backend/internal/dto"
	"github.com/starboost/reviews-backend/internal/http/handlers/common"
	"github.com/starboost/reviews-backend/internal/models"
	"github.com/starboost/reviews-backend/internal/service"
)

// Разрешённые типы скриншотов
var allowedScreenshotMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Разрешённые расширения скриншотов
var allowedScreenshotExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// TaskHandler предоставляет HTTP слой для работы исполнителя с заданиями.
type TaskHandler struct {
	tasks         *service.TaskService
	maxUploadSize int64
}

// NewTaskHandler создаёт хэндлер. maxUploadSize ограничивает размер скриншота в байтах.
func NewTaskHandler(tasks *service.TaskService, maxUploadSize int64) *TaskHandler {
	return &TaskHandler{tasks: tasks, maxUploadSize: maxUploadSize}
}

// ListAvailable обрабатывает GET /tasks/available.
func (h *TaskHandler) ListAvailable(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	tasks, err := h.tasks.ListAvailable(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(tasks, limit, offset))
}

// ListMine обрабатывает GET /tasks/my.
func (h *TaskHandler) ListMine(c *gin.Context) {
	internID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	tasks, err := h.tasks.ListMine(c.Request.Context(), internID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Get обрабатывает GET /tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	requesterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	role, _ := common.CurrentUserRole(c)

	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), taskID, requesterID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Для заданий с отправленным подтверждением отдаём его вместе с заданием.
	resp := dto.TaskResponse{ReviewTask: task}
	if task.Status == models.TaskStatusSubmitted || task.Status == models.TaskStatusApproved || task.Status == models.TaskStatusRejected {
		if proof, err := h.tasks.GetProof(c.Request.Context(), taskID, requesterID, role); err == nil {
			resp.Proof = proof
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Claim обрабатывает POST /tasks/:id/claim.
func (h *TaskHandler) Claim(c *gin.Context) {
	internID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Claim(c.Request.Context(), taskID, internID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SubmitProof обрабатывает POST /tasks/:id/proof (multipart/form-data:
// screenshot + review_content). Тип файла проверяется по магическим байтам,
// а не только по расширению.
func (h *TaskHandler) SubmitProof(c *gin.Context) {
	internID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reviewContent := c.PostForm("review_content")

	file, err := c.FormFile("screenshot")
	if err != nil {
		common.RespondBadRequest(c, "поле screenshot обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		common.RespondBadRequest(c, fmt.Sprintf("файл больше допустимых %d байт", h.maxUploadSize))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedScreenshotExtensions[ext] {
		common.RespondBadRequest(c, "неподдерживаемый формат файла. Разрешены: .jpg, .jpeg, .png, .webp")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer src.Close()

	// Читаем первые 512 байт для проверки магических байтов
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedScreenshotMimeTypes[contentType] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены изображения jpeg, png, webp", contentType))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondError(c, http.StatusInternalServerError, "не удалось сбросить позицию файла")
			return
		}
	}

	proof, err := h.tasks.SubmitProof(c.Request.Context(), service.SubmitProofInput{
		TaskID:        taskID,
		InternID:      internID,
		ReviewContent: reviewContent,
		Screenshot:    src,
		Filename:      file.Filename,
		ContentType:   contentType,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, proof)
}

// Proof обрабатывает GET /tasks/:id/proof.
func (h *TaskHandler) Proof(c *gin.Context) {
	requesterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	role, _ := common.CurrentUserRole(c)

	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proof, err := h.tasks.GetProof(c.Request.Context(), taskID, requesterID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

// Earnings обрабатывает GET /earnings.
func (h *TaskHandler) Earnings(c *gin.Context) {
	internID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	entries, total, err := h.tasks.Earnings(c.Request.Context(), internID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if entries == nil {
		entries = []models.EarningEntry{}
	}

	c.JSON(http.StatusOK, dto.EarningsResponse{Entries: entries, Total: total})
}
