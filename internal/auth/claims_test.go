package auth

import (
	"encoding/json"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

func TestClaimsForAccount(t *testing.T) {
	account := &domain.Account{ID: "acc-1", RoleID: "stale", RoleName: domain.RoleVendor}
	role := &domain.Role{ID: "role-supplier", Name: domain.RoleSupplier, Permissions: []string{domain.PermissionManageProducts}}

	c := ClaimsForAccount(account, role)
	assert.Equal(t, "acc-1", c.SubjectID)
	assert.Equal(t, domain.RoleSupplier, c.Role)
	assert.Equal(t, "role-supplier", c.RoleID)
	assert.True(t, c.Can(domain.PermissionManageProducts))
	assert.False(t, c.Can(domain.PermissionOrder))

	role.Permissions[0] = "changed"
	assert.Equal(t, domain.PermissionManageProducts, c.Permissions[0])

	bare := ClaimsForAccount(account, nil)
	assert.Equal(t, domain.RoleVendor, bare.Role)
	assert.Nil(t, bare.Permissions)
}

func TestClaimsHasRole(t *testing.T) {
	c := Claims{Role: domain.RoleAdmin}
	assert.True(t, c.HasRole(domain.RoleVendor, domain.RoleAdmin))
	assert.False(t, c.HasRole(domain.RoleVendor))
	assert.False(t, c.HasRole())

	empty := Claims{}
	assert.False(t, empty.HasRole(""))
}

func TestClaimsMapRoundTrip(t *testing.T) {
	in := Claims{
		SubjectID:   "acc-9",
		Role:        domain.RoleSupplier,
		Permissions: []string{},
		IsRefresh:   true,
		IssuedAt:    100,
		ExpiresAt:   200,
		TokenID:     "jti-1",
		Extra:       map[string]any{"region": "west"},
	}

	raw, err := json.Marshal(in.toMapClaims())
	require.NoError(t, err)
	decoded := jwt.MapClaims{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	out, err := claimsFromMap(decoded)
	require.NoError(t, err)
	assert.Equal(t, in.SubjectID, out.SubjectID)
	assert.Equal(t, in.Role, out.Role)
	assert.Empty(t, out.RoleID)
	assert.Equal(t, []string{}, out.Permissions)
	assert.True(t, out.IsRefresh)
	assert.Equal(t, int64(100), out.IssuedAt)
	assert.Equal(t, int64(200), out.ExpiresAt)
	assert.Equal(t, "jti-1", out.TokenID)
	assert.Equal(t, map[string]any{"region": "west"}, out.Extra)
}

func TestClaimsFromMapDecodesJSONNumbers(t *testing.T) {
	m := jwt.MapClaims{
		claimSubjectID: "acc-1",
		claimExpiresAt: json.Number("200"),
		"big":          json.Number("9007199254740993"),
		"ratio":        json.Number("0.25"),
		"list":         []any{json.Number("1"), "a"},
		"obj":          map[string]any{"n": json.Number("18446744073709551615")},
	}

	out, err := claimsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.ExpiresAt)
	assert.Equal(t, int64(9007199254740993), out.Extra["big"])
	assert.Equal(t, json.Number("0.25"), out.Extra["ratio"])
	assert.Equal(t, []any{int64(1), "a"}, out.Extra["list"])
	assert.Equal(t, map[string]any{"n": json.Number("18446744073709551615")}, out.Extra["obj"])
}

func TestClaimsFromMapRejectsBadTypes(t *testing.T) {
	tests := []struct {
		name string
		m    jwt.MapClaims
	}{
		{"missing uid", jwt.MapClaims{"exp": float64(1)}},
		{"numeric uid", jwt.MapClaims{"uid": float64(1)}},
		{"numeric role", jwt.MapClaims{"uid": "a", "role": float64(2)}},
		{"string exp", jwt.MapClaims{"uid": "a", "exp": "soon"}},
		{"scalar permissions", jwt.MapClaims{"uid": "a", "permissions": "read"}},
		{"mixed permissions", jwt.MapClaims{"uid": "a", "permissions": []any{"read", float64(1)}}},
		{"string refresh", jwt.MapClaims{"uid": "a", "refresh": "yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := claimsFromMap(tt.m)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
