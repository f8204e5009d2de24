package domain

import "time"

// Account is a marketplace participant that can authenticate.
type Account struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	RoleID       string
	RoleName     RoleName
	RoleStatus   bool
	LoginCount   int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NeedsPasswordReset is true until the first successful sign-in.
func (a *Account) NeedsPasswordReset() bool {
	return a.LoginCount == 0
}
