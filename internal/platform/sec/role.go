// Copyright (c) 2026 Coverdesk. All rights reserved.

package sec

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted portal access: user administration, product management, audit trail
	RoleAdmin Role = "admin"

	// Can review and decide claims, and read customer records
	RoleAgent Role = "agent"

	// Default role for registered policyholders
	RoleCustomer Role = "customer"
)

// DefaultRole is assigned when registration does not name a role.
const DefaultRole = RoleCustomer

// Valid reports whether r is one of the three enumerated portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// # Authorization

// In reports whether r is a member of the allowed role set.
//
// This is the single authorization contract for the portal: route guards on
// every boundary decide access with exactly this membership check. An empty
// or unknown role is never authorized, regardless of the allowed set — an
// identity whose claims have not resolved yet must be treated as denied,
// never as implicitly admitted.
func (r Role) In(allowed ...Role) bool {
	if !r.Valid() {
		return false
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
