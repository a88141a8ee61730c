package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/starboost/reviews-backend/internal/http/middleware"
)

func TestTaskHandler_ListMine_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.GET("/tasks/my", handler.ListMine)

	req, _ := http.NewRequest("GET", "/tasks/my", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTaskHandler_Claim_InvalidTaskID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.POST("/tasks/:id/claim", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		handler.Claim(c)
	})

	req, _ := http.NewRequest("POST", "/tasks/not-a-uuid/claim", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_SubmitProof_MissingScreenshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil, maxUploadSize: 10 << 20}
	r.POST("/tasks/:id/proof", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		handler.SubmitProof(c)
	})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("review_content", "Отличное место, персонал очень вежливый.")
	_ = writer.Close()

	req, _ := http.NewRequest("POST", "/tasks/"+uuid.NewString()+"/proof", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_SubmitProof_BadExtension(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil, maxUploadSize: 10 << 20}
	r.POST("/tasks/:id/proof", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		handler.SubmitProof(c)
	})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("screenshot", "proof.exe")
	_, _ = part.Write([]byte("MZ...."))
	_ = writer.Close()

	req, _ := http.NewRequest("POST", "/tasks/"+uuid.NewString()+"/proof", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_SubmitProof_FakeImageBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil, maxUploadSize: 10 << 20}
	r.POST("/tasks/:id/proof", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		handler.SubmitProof(c)
	})

	// Расширение .png, но содержимое не изображение
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("screenshot", "proof.png")
	_, _ = part.Write([]byte("definitely not a png"))
	_ = writer.Close()

	req, _ := http.NewRequest("POST", "/tasks/"+uuid.NewString()+"/proof", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Earnings_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{tasks: nil}
	r.GET("/tasks/earnings", handler.Earnings)

	req, _ := http.NewRequest("GET", "/tasks/earnings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
