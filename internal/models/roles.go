package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles understood by the backend.
type Role string

const (
	RoleCustomer    Role = "customer"
	RolePartner     Role = "partner"
	RoleCandidate   Role = "candidate"
	RoleElectrician Role = "electrician"
	RoleModerator   Role = "moderator"
	RoleAdmin       Role = "admin"
)

var allRoles = []Role{
	RoleCustomer,
	RolePartner,
	RoleCandidate,
	RoleElectrician,
	RoleModerator,
	RoleAdmin,
}

// Roles returns every known role.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole converts a wire value into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusActive, StatusInactive:
		return status, nil
	}
	return "", fmt.Errorf("unknown account status %q", value)
}

func (s Status) String() string {
	return string(s)
}
