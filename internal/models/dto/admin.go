package dto

import "github.com/garoui/electricite-be/internal/models"

type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active inactive"`
	Role   string `json:"role" validate:"omitempty,oneof=customer partner candidate electrician moderator admin"`
}

type AccountPage struct {
	Accounts []models.Account `json:"accounts"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Total    int              `json:"total"`
}
