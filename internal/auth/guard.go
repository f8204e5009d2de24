package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/domain"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

const (
	claimsKey  = "auth_claims"
	accountKey = "auth_account"
)

// RevocationStore remembers token ids that must be rejected before their expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// GuardOptions wires the optional collaborators of a Guard.
type GuardOptions struct {
	Accounts    AccountDirectory
	Revocations RevocationStore
}

// Guard builds Fiber middleware that gates routes behind a verified bearer token.
type Guard struct {
	authority   *Authority
	accounts    AccountDirectory
	revocations RevocationStore
}

// NewGuard constructs a guard around authority.
func NewGuard(authority *Authority, opts GuardOptions) *Guard {
	return &Guard{authority: authority, accounts: opts.Accounts, revocations: opts.Revocations}
}

// Authorize verifies the bearer token and, when roles are given, requires the
// token role to be one of them. Decoded claims are exposed via ClaimsFromContext.
func (g *Guard) Authorize(roles ...domain.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := g.check(c.UserContext(), c.Get(fiber.HeaderAuthorization), roles)
		if err != nil {
			return ToHTTPError(err)
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Authenticate behaves like Authorize and additionally loads the active account
// behind the token, exposed via AccountFromContext.
func (g *Guard) Authenticate(roles ...domain.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.accounts == nil {
			return apperrors.NewInternalError(errors.New("auth: account directory not configured"))
		}
		ctx := c.UserContext()
		claims, err := g.check(ctx, c.Get(fiber.HeaderAuthorization), roles)
		if err != nil {
			return ToHTTPError(err)
		}
		account, err := loadAccount(ctx, g.accounts, claims.SubjectID)
		if err != nil {
			return ToHTTPError(err)
		}
		c.Locals(claimsKey, claims)
		c.Locals(accountKey, account)
		return c.Next()
	}
}

// RequirePermission checks the permission snapshot of claims placed by a
// preceding Authorize or Authenticate.
func (g *Guard) RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return ToHTTPError(ErrMissingCredential)
		}
		if !claims.Can(perm) {
			return ToHTTPError(fmt.Errorf("%w: permission %q required", ErrForbidden, perm))
		}
		return c.Next()
	}
}

// Revoke rejects the token behind claims until its natural expiry. It is a
// no-op when no revocation store is configured.
func (g *Guard) Revoke(ctx context.Context, claims *Claims) error {
	if g.revocations == nil || claims == nil || claims.TokenID == "" {
		return nil
	}
	if err := g.revocations.Revoke(ctx, claims.TokenID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return lookupFailed("revocation store", err)
	}
	return nil
}

// IsRevoked reports whether the token behind claims has been revoked. Without a
// revocation store nothing is ever revoked.
func (g *Guard) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if g.revocations == nil || claims == nil || claims.TokenID == "" {
		return false, nil
	}
	revoked, err := g.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return false, lookupFailed("revocation store", err)
	}
	return revoked, nil
}

func (g *Guard) check(ctx context.Context, header string, roles []domain.RoleName) (*Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := g.authority.Verify(token, roles...)
	if err != nil {
		return nil, err
	}
	revoked, err := g.IsRevoked(ctx, claims)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// BearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingCredential
	}
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("%w: invalid authorization header", ErrMalformedToken)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" || strings.Contains(token, " ") {
		return "", fmt.Errorf("%w: invalid authorization header", ErrMalformedToken)
	}
	return token, nil
}

// ClaimsFromContext returns the claims stored by a guard.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// AccountFromContext returns the account stored by Authenticate.
func AccountFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	account, ok := c.Locals(accountKey).(*domain.Account)
	return account, ok && account != nil
}
