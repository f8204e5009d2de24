package domain

import "time"

// RoleName is the closed set of roles an account can hold.
type RoleName string

const (
	RoleAdmin    RoleName = "admin"
	RoleSupplier RoleName = "supplier"
	RoleVendor   RoleName = "vendor"
)

// Capability strings carried in token permission snapshots.
const (
	PermissionAll            = "*"
	PermissionRead           = "read"
	PermissionWrite          = "write"
	PermissionManageProducts = "manage_products"
	PermissionOrder          = "order"
)

// Role groups a permission set under a unique name. Lower priority means more authority.
type Role struct {
	ID          string
	Name        RoleName
	Priority    int
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission reports whether the role grants perm, honoring the "*" wildcard.
func (r *Role) HasPermission(perm string) bool {
	if r == nil {
		return false
	}
	return PermissionsAllow(r.Permissions, perm)
}

// PermissionsAllow reports whether perms contains perm or the wildcard.
func PermissionsAllow(perms []string, perm string) bool {
	for _, p := range perms {
		if p == PermissionAll || p == perm {
			return true
		}
	}
	return false
}

// DefaultRoles returns the startup seed set.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdmin, Priority: 0, Permissions: []string{PermissionAll}},
		{Name: RoleSupplier, Priority: -1, Permissions: []string{PermissionRead, PermissionWrite, PermissionManageProducts}},
		{Name: RoleVendor, Priority: 1, Permissions: []string{PermissionRead, PermissionWrite, PermissionOrder}},
	}
}

// IsKnownRole reports whether name belongs to the seed set.
func IsKnownRole(name RoleName) bool {
	switch name {
	case RoleAdmin, RoleSupplier, RoleVendor:
		return true
	}
	return false
}
