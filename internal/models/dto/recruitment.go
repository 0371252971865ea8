package dto

type ApplyRequest struct {
	Position      string   `json:"position" validate:"required"`
	Experience    *int     `json:"experience" validate:"required,gte=0"`
	Education     string   `json:"education" validate:"required"`
	Motivation    string   `json:"motivation" validate:"required"`
	AvailableFrom string   `json:"availableFrom" validate:"required"`
	DesiredSalary *float64 `json:"desiredSalary" validate:"omitempty,gte=0"`
}

type ApplicationStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending reviewed accepted rejected"`
	Comment string `json:"comment"`
}
