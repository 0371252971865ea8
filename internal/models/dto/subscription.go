package dto

import "github.com/garoui/electricite-be/internal/models"

type SubscribeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=monthly quarterly"`
}

type SubscriptionStatusResponse struct {
	Status   models.SubscriptionState `json:"status"`
	StartsAt *string                  `json:"startsAt,omitempty"`
	EndsAt   *string                  `json:"endsAt,omitempty"`
}
