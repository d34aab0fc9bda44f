package domain

import "time"

// Permission is a capability granted by a role.
type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionDelete Permission = "delete"
	PermissionAdmin  Permission = "admin"
)

// AllPermissions lists the closed permission enumeration in canonical order.
var AllPermissions = []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionAdmin}

// Canonical role names created by the seed routine.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is a named set of permissions that accounts reference by id.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Ref returns the populated reference form of the role.
func (r *Role) Ref() RoleRef {
	return RoleRef{ID: r.ID, Name: r.Name, Description: r.Description}
}
