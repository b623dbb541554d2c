package models

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleWorker
}

// Capability is a single permission flag carried by a principal
type Capability string

const (
	CapManageTasks Capability = "manage_tasks"
	CapLogEffort   Capability = "log_effort"
)

// RolePolicy default capability set per role.
// Evaluated when a principal is built, never mutated at runtime.
var RolePolicy = map[Role][]Capability{
	RoleAdmin:   {CapManageTasks, CapLogEffort},
	RoleManager: {CapManageTasks, CapLogEffort},
	RoleWorker:  {CapLogEffort},
}

// Principal is the already-authenticated actor attached to every mutation
type Principal struct {
	ID          uuid.UUID
	Role        Role
	Permissions []Capability
}

// NewPrincipal builds a principal; an empty permission set falls back
// to the role's policy defaults
func NewPrincipal(id uuid.UUID, role Role, permissions []Capability) *Principal {
	if len(permissions) == 0 {
		permissions = append([]Capability(nil), RolePolicy[role]...)
	}
	return &Principal{ID: id, Role: role, Permissions: permissions}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func (p *Principal) Has(c Capability) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	for _, perm := range p.Permissions {
		if perm == c {
			return true
		}
	}
	return false
}

// CanManageTasks admin หรือมี manage_tasks
func (p *Principal) CanManageTasks() bool {
	return p.Has(CapManageTasks)
}
