// Package domain holds the lead bounded context's core types and rules
// that are independent of transport and storage.
package domain

import "github.com/google/uuid"

// Role is the pipeline role of an authenticated user.
type Role string

const (
	// RoleAgent1 is the intake agent who creates leads.
	RoleAgent1 Role = "agent1"
	// RoleAgent2 is the qualification agent who works assigned leads.
	RoleAgent2 Role = "agent2"
	// RoleAdmin manages a single tenant organization.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin manages the whole platform across tenants.
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether the role is one of the known pipeline roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAgent1, RoleAgent2, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Actor is the resolved description of the user performing an operation:
// token identity enriched with the active flag and hub membership that
// only the user and organization records can assert.
type Actor struct {
	ID             uuid.UUID
	Name           string
	Role           Role
	OrganizationID *uuid.UUID // nil for superadmin
	IsHubMember    bool
	Active         bool
}

// SameOrganization reports whether the actor belongs to the given tenant.
func (a Actor) SameOrganization(orgID uuid.UUID) bool {
	return a.OrganizationID != nil && *a.OrganizationID == orgID
}
