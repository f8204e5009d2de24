package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      domain.RoleName `json:"role"`
}

// SigninRequest payload. Identifier is a username or an email address.
type SigninRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginIdentifier returns the first non-empty identifier field.
func (r SigninRequest) LoginIdentifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ProfileUpdateRequest payload. Omitted fields stay unchanged.
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// AccountActiveRequest toggles an account.
type AccountActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// AuthResponse standard response for token endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID                 string          `json:"id"`
	Username           string          `json:"username"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	Email              string          `json:"email"`
	Role               domain.RoleName `json:"role"`
	RoleID             string          `json:"role_id"`
	IsActive           bool            `json:"is_active"`
	LoginCount         int             `json:"login_count"`
	NeedsPasswordReset bool            `json:"needs_password_reset"`
	CreatedAt          time.Time       `json:"created_at"`
}

// RoleResponse describes a role.
type RoleResponse struct {
	ID          string          `json:"id"`
	Name        domain.RoleName `json:"name"`
	Priority    int             `json:"priority"`
	Permissions []string        `json:"permissions"`
}
