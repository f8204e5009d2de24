package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleHasPermission(t *testing.T) {
	roles := map[RoleName]Role{}
	for _, r := range DefaultRoles() {
		roles[r.Name] = r
	}

	admin := roles[RoleAdmin]
	supplier := roles[RoleSupplier]
	vendor := roles[RoleVendor]

	assert.True(t, admin.HasPermission(PermissionManageProducts))
	assert.True(t, admin.HasPermission("anything"))
	assert.True(t, supplier.HasPermission(PermissionManageProducts))
	assert.False(t, supplier.HasPermission(PermissionOrder))
	assert.True(t, vendor.HasPermission(PermissionOrder))
	assert.False(t, vendor.HasPermission(PermissionManageProducts))

	var missing *Role
	assert.False(t, missing.HasPermission(PermissionRead))
}

func TestDefaultRolesPriorities(t *testing.T) {
	roles := DefaultRoles()
	assert.Len(t, roles, 3)
	for _, r := range roles {
		assert.True(t, IsKnownRole(r.Name))
	}
	assert.False(t, IsKnownRole("user"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusDelivered, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAccountNeedsPasswordReset(t *testing.T) {
	acc := &Account{}
	assert.True(t, acc.NeedsPasswordReset())
	acc.LoginCount = 1
	assert.False(t, acc.NeedsPasswordReset())
}
