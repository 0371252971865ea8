package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus tracks the review state of a job application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus converts a wire value into an ApplicationStatus.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return status, nil
	}
	return "", fmt.Errorf("unknown application status %q", value)
}

// Application is a candidate's answer to a job posting.
type Application struct {
	ID            int64             `json:"id"`
	AccountID     int64             `json:"accountId"`
	Position      string            `json:"position"`
	Experience    int               `json:"experience"`
	Education     string            `json:"education"`
	Motivation    string            `json:"motivation"`
	AvailableFrom time.Time         `json:"availableFrom"`
	DesiredSalary *float64          `json:"desiredSalary,omitempty"`
	Status        ApplicationStatus `json:"status"`
	AdminComment  string            `json:"adminComment,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
