package models

import (
	"fmt"
	"strings"
	"time"
)

// Plan is a purchasable subscription duration.
type Plan string

const (
	PlanMonthly   Plan = "monthly"
	PlanQuarterly Plan = "quarterly"
)

// ParsePlan converts a wire value into a Plan.
func ParsePlan(value string) (Plan, error) {
	plan := Plan(strings.ToLower(strings.TrimSpace(value)))
	switch plan {
	case PlanMonthly, PlanQuarterly:
		return plan, nil
	}
	return "", fmt.Errorf("unknown plan %q", value)
}

// Duration returns how long a subscription on this plan lasts.
func (p Plan) Duration() time.Duration {
	switch p {
	case PlanQuarterly:
		return 90 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// SubscriptionStatus is the stored status of a subscription row.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// SubscriptionState is the effective classification of an account's
// subscription at a given instant. It is derived, never stored.
type SubscriptionState string

const (
	StateFree    SubscriptionState = "free"
	StatePremium SubscriptionState = "premium"
	StateExpired SubscriptionState = "expired"
)

// Subscription is one period of paid access for an account.
type Subscription struct {
	ID          int64              `json:"id"`
	AccountID   int64              `json:"accountId"`
	Plan        Plan               `json:"plan"`
	Status      SubscriptionStatus `json:"status"`
	StartsAt    time.Time          `json:"startsAt"`
	EndsAt      time.Time          `json:"endsAt"`
	CancelledAt *time.Time         `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// StateAt classifies the subscription at now. A nil subscription means the
// account never subscribed. An end date at or before now is expired whatever
// the stored status says; otherwise only an active row is premium.
func (s *Subscription) StateAt(now time.Time) SubscriptionState {
	if s == nil {
		return StateFree
	}
	if !s.EndsAt.After(now) {
		return StateExpired
	}
	if s.Status == SubscriptionActive {
		return StatePremium
	}
	return StateFree
}

// PremiumAt reports whether the subscription grants premium access at now.
func (s *Subscription) PremiumAt(now time.Time) bool {
	return s.StateAt(now) == StatePremium
}
