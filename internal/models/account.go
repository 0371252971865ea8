package models

import "time"

// Account captures application-facing fields for a registered identity.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	Profession   string    `json:"profession,omitempty"`
	Experience   *int      `json:"experience,omitempty"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsActive reports whether the account may use issued tokens.
func (a Account) IsActive() bool {
	return a.Status == StatusActive
}
