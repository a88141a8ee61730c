package dto

// SignUpRequest represents the request to register a new account
type SignUpRequest struct {
	Email        string  `json:"email" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Role         string  `json:"role" binding:"required"`
	BusinessName *string `json:"business_name"`
}

// SignInRequest represents the request to sign in
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the request to update the current profile
type UpdateProfileRequest struct {
	Name         string  `json:"name" binding:"required"`
	BusinessName *string `json:"business_name"`
	Phone        *string `json:"phone"`
}

// UpdatePasswordRequest represents the request to change the password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// CreateOrderRequest represents the request to purchase a review package
type CreateOrderRequest struct {
	PackageID    string `json:"package_id" binding:"required"`
	BusinessURL  string `json:"business_url" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
}

// DecideTaskRequest represents the moderation decision on a submitted task
type DecideTaskRequest struct {
	Decision string `json:"decision" binding:"required"`
}
