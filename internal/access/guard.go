package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garoui/electricite-be/internal/models"
)

// RoleSet is an immutable set of roles.
type RoleSet struct {
	members map[models.Role]struct{}
}

// NewRoleSet builds a set from roles. It panics on a role outside the closed
// set so misconfigured guards fail at start-up rather than on a request.
func NewRoleSet(roles ...models.Role) RoleSet {
	members := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("access: unknown role %q in role set", r))
		}
		members[r] = struct{}{}
	}
	return RoleSet{members: members}
}

// Contains reports whether r is a member.
func (s RoleSet) Contains(r models.Role) bool {
	_, ok := s.members[r]
	return ok
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	return len(s.members)
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s.members))
	for r := range s.members {
		names = append(names, r.String())
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ",") + "}"
}

// Guard is a reusable authorization rule attached to a route.
type Guard struct {
	Name                 string
	Roles                RoleSet
	RequiresSubscription bool
}

// NewGuard builds a guard admitting the given roles.
func NewGuard(name string, roles ...models.Role) Guard {
	if len(roles) == 0 {
		panic(fmt.Sprintf("access: guard %q admits no role", name))
	}
	return Guard{Name: name, Roles: NewRoleSet(roles...)}
}

// WithSubscription returns a copy of g that also demands a premium
// subscription from subscription-gated roles.
func (g Guard) WithSubscription() Guard {
	g.RequiresSubscription = true
	return g
}

// SubscriptionGatedRoles must hold a premium subscription to pass a guard
// that requires one. Other roles pass such guards on role alone.
var SubscriptionGatedRoles = NewRoleSet(models.RoleCandidate, models.RoleElectrician)

var (
	// Authenticated admits any active account.
	Authenticated = NewGuard("authenticated", models.Roles()...)
	// AdminOnly admits administrators.
	AdminOnly = NewGuard("admin", models.RoleAdmin)
	// Staff admits administrators and moderators.
	Staff = NewGuard("staff", models.RoleAdmin, models.RoleModerator)
	// SubscriptionViewers may list subscriptions.
	SubscriptionViewers = NewGuard("subscription-viewers", models.RoleAdmin, models.RolePartner)
	// JobApplicants may submit job applications.
	JobApplicants = NewGuard("job-applicants", models.Roles()...).WithSubscription()
)
