package models

// OrderStatus константы статусов заказов
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in-progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// TaskStatus константы статусов заданий на отзыв
const (
	TaskStatusPending   = "pending"
	TaskStatusAssigned  = "assigned"
	TaskStatusSubmitted = "submitted"
	TaskStatusApproved  = "approved"
	TaskStatusRejected  = "rejected"
	TaskStatusCancelled = "cancelled"
)

// Роли пользователей
const (
	RoleAdmin    = "admin"
	RoleClient   = "client"
	RoleIntern   = "intern"
	RoleProvider = "provider"
)

// DecisionApprove и DecisionReject — допустимые решения администратора по заданию.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusInProgress: {},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// ValidTaskStatuses список валидных статусов заданий
var ValidTaskStatuses = map[string]struct{}{
	TaskStatusPending:   {},
	TaskStatusAssigned:  {},
	TaskStatusSubmitted: {},
	TaskStatusApproved:  {},
	TaskStatusRejected:  {},
	TaskStatusCancelled: {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleAdmin:    {},
	RoleClient:   {},
	RoleIntern:   {},
	RoleProvider: {},
}

// DefaultGuidelines — требования к отзыву, прикрепляемые к каждому заданию.
var DefaultGuidelines = []string{
	"Mention the staff",
	"Describe the atmosphere",
	"Be honest and specific",
}
