package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

// Decision is the outcome of authorizing a resolved account against a guard.
type Decision int

const (
	Allow Decision = iota
	Forbidden
	SubscriptionRequired
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case SubscriptionRequired:
		return "subscription_required"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// SubscriptionReader is the slice of the subscription store the gate reads.
type SubscriptionReader interface {
	FindLatestSubscription(ctx context.Context, accountID int64) (models.Subscription, error)
}

// Gate decides whether a resolved account may pass a guard. It holds no
// mutable state; every call reads the subscription store afresh.
type Gate struct {
	subs SubscriptionReader
	now  func() time.Time
}

// NewGate constructs a gate. A nil clock means time.Now.
func NewGate(subs SubscriptionReader, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{subs: subs, now: now}
}

// Authorize evaluates guard for account. Store failures are returned as
// errors and never turned into a decision.
func (g *Gate) Authorize(ctx context.Context, account models.Account, guard Guard) (Decision, error) {
	if !guard.Roles.Contains(account.Role) {
		return Forbidden, nil
	}
	if !guard.RequiresSubscription || !SubscriptionGatedRoles.Contains(account.Role) {
		return Allow, nil
	}
	state, _, err := g.SubscriptionState(ctx, account.ID)
	if err != nil {
		return Forbidden, err
	}
	if state != models.StatePremium {
		return SubscriptionRequired, nil
	}
	return Allow, nil
}

// SubscriptionState returns the effective subscription state of an account
// and its latest subscription, which is nil when it never subscribed.
func (g *Gate) SubscriptionState(ctx context.Context, accountID int64) (models.SubscriptionState, *models.Subscription, error) {
	sub, err := g.subs.FindLatestSubscription(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.StateFree, nil, nil
		}
		return "", nil, fmt.Errorf("load subscription for account %d: %w", accountID, err)
	}
	return sub.StateAt(g.now()), &sub, nil
}

// CanAccess reports whether account may touch a row owned by ownerID.
// Administrators always can.
func CanAccess(account models.Account, ownerID int64) bool {
	return account.Role == models.RoleAdmin || account.ID == ownerID
}
