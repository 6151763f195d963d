package booking

import (
	"fmt"

	"github.com/homefix-app/service-booking/internal/domain"
)

// ActorRole identifies which party is invoking an operation. RoleSystem is
// never carried by a request: it marks transitions only the service itself
// may drive (payment-confirmed completion).
type ActorRole string

const (
	RoleClient     ActorRole = "client"
	RoleTechnician ActorRole = "technician"
	RoleAdmin      ActorRole = "admin"
	RoleSystem     ActorRole = "system"
)

// IsValid returns true for roles an authenticated request may carry.
func (r ActorRole) IsValid() bool {
	return r == RoleClient || r == RoleTechnician || r == RoleAdmin
}

// String returns the string representation of the role.
func (r ActorRole) String() string {
	return string(r)
}

// ParseActorRole converts a string to an ActorRole, returning an error for
// anything a request may not carry.
func ParseActorRole(s string) (ActorRole, error) {
	role := ActorRole(s)
	if !role.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid actor role: %s", s))
	}
	return role, nil
}
