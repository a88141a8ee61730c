package dto

import (
	"github.com/starboost/reviews-backend/internal/models"
)

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse is the standard success envelope for operations
// that return a message rather than a resource
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TaskResponse represents a review task with its proof when present
type TaskResponse struct {
	*models.ReviewTask
	Proof *models.ReviewProof `json:"proof,omitempty"`
}

// EarningsResponse represents the intern earnings history with the total
type EarningsResponse struct {
	Entries []models.EarningEntry `json:"entries"`
	Total   float64               `json:"total"`
}

// ListResponse is a generic paginated list envelope
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse creates a ListResponse, normalizing a nil slice to empty
func NewListResponse[T any](items []T, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: limit, Offset: offset}
}
