package auth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// Wire keys of the token payload.
const (
	claimSubjectID   = "uid"
	claimRole        = "role"
	claimRoleID      = "role_id"
	claimPermissions = "permissions"
	claimRefresh     = "refresh"
	claimIssuedAt    = "iat"
	claimExpiresAt   = "exp"
	claimTokenID     = "jti"
)

var reservedClaims = map[string]struct{}{
	claimSubjectID:   {},
	claimRole:        {},
	claimRoleID:      {},
	claimPermissions: {},
	claimRefresh:     {},
	claimIssuedAt:    {},
	claimExpiresAt:   {},
	claimTokenID:     {},
}

// Claims is the decoded token payload: fixed identity and authorization fields
// plus an open extension map.
//
// Extra values must be JSON-native: nil, string, bool, integers, floats,
// json.Number, slices and map[string]any of those. Issue normalizes them to the
// decoded form (integers as int64, other numbers as json.Number, slices as
// []any) so the issued claims equal what Verify returns.
type Claims struct {
	SubjectID   string
	Role        domain.RoleName
	RoleID      string
	Permissions []string
	IsRefresh   bool
	IssuedAt    int64
	ExpiresAt   int64
	TokenID     string
	Extra       map[string]any
}

// ClaimsForAccount snapshots an account and its role into a payload ready for Issue.
func ClaimsForAccount(account *domain.Account, role *domain.Role) Claims {
	c := Claims{SubjectID: account.ID, Role: account.RoleName, RoleID: account.RoleID}
	if role != nil {
		c.Role = role.Name
		c.RoleID = role.ID
		c.Permissions = append([]string(nil), role.Permissions...)
	}
	return c
}

// HasRole reports whether the claims role is one of roles.
func (c *Claims) HasRole(roles ...domain.RoleName) bool {
	if c.Role == "" {
		return false
	}
	for _, r := range roles {
		if r == c.Role {
			return true
		}
	}
	return false
}

// Can reports whether the permission snapshot grants perm.
func (c *Claims) Can(perm string) bool {
	return domain.PermissionsAllow(c.Permissions, perm)
}

func (c *Claims) validate() error {
	if strings.TrimSpace(c.SubjectID) == "" {
		return fmt.Errorf("%w: subject id required", ErrInvalidClaims)
	}
	for key := range c.Extra {
		if _, reserved := reservedClaims[key]; reserved {
			return fmt.Errorf("%w: extra claim %q is reserved", ErrInvalidClaims, key)
		}
	}
	return nil
}

// normalizedExtra deep-copies Extra into its wire form.
func (c *Claims) normalizedExtra() (map[string]any, error) {
	if c.Extra == nil {
		return nil, nil
	}
	out := make(map[string]any, len(c.Extra))
	for k, v := range c.Extra {
		n, err := normalizeExtraValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: extra claim %q: %v", ErrInvalidClaims, k, err)
		}
		out[k] = n
	}
	return out, nil
}

func normalizeExtraValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64:
		return t, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint:
		return normalizeUint(uint64(t)), nil
	case uint64:
		return normalizeUint(t), nil
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	case json.Number:
		return normalizeNumber(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := normalizeExtraValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalizeExtraValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return json.Number(strconv.FormatUint(u, 10))
	}
	return int64(u)
}

func normalizeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	if f == math.Trunc(f) {
		return normalizeNumber(json.Number(strconv.FormatFloat(f, 'f', -1, 64)))
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func normalizeNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if _, err := n.Float64(); err != nil {
		return nil, fmt.Errorf("invalid number %q", n.String())
	}
	return n, nil
}

// decodeExtraValue turns a json.Number-decoded value into the form produced by
// normalizeExtraValue.
func decodeExtraValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = decodeExtraValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = decodeExtraValue(item)
		}
		return out
	}
	return v
}

func (c *Claims) toMapClaims() jwt.MapClaims {
	m := make(jwt.MapClaims, len(c.Extra)+8)
	for k, v := range c.Extra {
		m[k] = v
	}
	m[claimSubjectID] = c.SubjectID
	if c.Role != "" {
		m[claimRole] = string(c.Role)
	}
	if c.RoleID != "" {
		m[claimRoleID] = c.RoleID
	}
	if c.Permissions != nil {
		m[claimPermissions] = c.Permissions
	}
	if c.IsRefresh {
		m[claimRefresh] = true
	}
	if c.TokenID != "" {
		m[claimTokenID] = c.TokenID
	}
	m[claimIssuedAt] = c.IssuedAt
	m[claimExpiresAt] = c.ExpiresAt
	return m
}

func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	c := &Claims{}
	var err error

	if c.SubjectID, err = stringClaim(m, claimSubjectID); err != nil {
		return nil, err
	}
	if c.SubjectID == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrMalformedToken, claimSubjectID)
	}
	role, err := stringClaim(m, claimRole)
	if err != nil {
		return nil, err
	}
	c.Role = domain.RoleName(role)
	if c.RoleID, err = stringClaim(m, claimRoleID); err != nil {
		return nil, err
	}
	if c.TokenID, err = stringClaim(m, claimTokenID); err != nil {
		return nil, err
	}
	if c.ExpiresAt, err = numericClaim(m, claimExpiresAt); err != nil {
		return nil, err
	}
	if c.IssuedAt, err = numericClaim(m, claimIssuedAt); err != nil {
		return nil, err
	}

	if raw, ok := m[claimPermissions]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a list", ErrMalformedToken, claimPermissions)
		}
		c.Permissions = make([]string, 0, len(list))
		for _, p := range list {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must contain strings", ErrMalformedToken, claimPermissions)
			}
			c.Permissions = append(c.Permissions, s)
		}
	}

	if raw, ok := m[claimRefresh]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", ErrMalformedToken, claimRefresh)
		}
		c.IsRefresh = b
	}

	for k, v := range m {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = decodeExtraValue(v)
	}
	return c, nil
}

func stringClaim(m jwt.MapClaims, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformedToken, key)
	}
	return s, nil
}

func numericClaim(m jwt.MapClaims, key string) (int64, error) {
	switch v := m[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformedToken, key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be numeric", ErrMalformedToken, key)
	}
}
