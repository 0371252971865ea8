package dto

import "github.com/garoui/electricite-be/internal/models"

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Phone      string `json:"phone"`
	Profession string `json:"profession"`
	Experience *int   `json:"experience" validate:"omitempty,gte=0"`
	Role       string `json:"role" validate:"omitempty,oneof=customer partner candidate"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

type ProfileResponse struct {
	Account             models.Account           `json:"account"`
	SubscriptionStatus  models.SubscriptionState `json:"subscriptionStatus"`
	SubscriptionEndDate *string                  `json:"subscriptionEndDate"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
