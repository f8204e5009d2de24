package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// Default lifetimes applied when AuthorityConfig leaves them unset.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * time.Minute
	DefaultAlgorithm  = "HS256"
)

// AuthorityConfig is the explicit configuration of an Authority. It is built
// once at startup; rotating Secret invalidates every token issued before.
type AuthorityConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RefreshRevalidatesRole re-reads the account and its role on refresh instead
	// of copying the role snapshot from the presented token.
	RefreshRevalidatesRole bool
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// IssuedToken is a signed token together with its numeric expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt int64
	Claims    Claims
}

// Authority issues, verifies and refreshes signed session tokens. It holds no
// mutable state and is safe for concurrent use.
type Authority struct {
	secret                 []byte
	method                 *jwt.SigningMethodHMAC
	accessTTL              time.Duration
	refreshTTL             time.Duration
	refreshRevalidatesRole bool
	now                    func() time.Time
	accounts               AccountDirectory
	roles                  RoleDirectory
}

// NewAuthority validates cfg and builds an Authority. The directories are only
// consulted when cfg.RefreshRevalidatesRole is set and may otherwise be nil.
func NewAuthority(cfg AuthorityConfig, accounts AccountDirectory, roles RoleDirectory) (*Authority, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	alg := strings.ToUpper(cfg.Algorithm)
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < time.Second || cfg.RefreshTTL < time.Second {
		return nil, errors.New("auth: token lifetimes must be at least one second")
	}
	if cfg.RefreshRevalidatesRole && (accounts == nil || roles == nil) {
		return nil, errors.New("auth: role revalidation on refresh requires account and role directories")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Authority{
		secret:                 []byte(cfg.Secret),
		method:                 method,
		accessTTL:              cfg.AccessTTL,
		refreshTTL:             cfg.RefreshTTL,
		refreshRevalidatesRole: cfg.RefreshRevalidatesRole,
		now:                    cfg.Now,
		accounts:               accounts,
		roles:                  roles,
	}, nil
}

// IssueOption customizes a single Issue call.
type IssueOption func(*issueOptions)

type issueOptions struct {
	ttl time.Duration
}

// WithTTL overrides the token lifetime. exp has second precision, so a
// fractional second is rounded up.
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) { o.ttl = ttl }
}

// WithTTLSeconds overrides the token lifetime with a number of seconds.
func WithTTLSeconds(seconds int64) IssueOption {
	return WithTTL(time.Duration(seconds) * time.Second)
}

// Issue signs claims into a token expiring after the access TTL unless an
// option says otherwise. IssuedAt, ExpiresAt and TokenID are always stamped.
func (a *Authority) Issue(claims Claims, opts ...IssueOption) (*IssuedToken, error) {
	o := issueOptions{ttl: a.accessTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return a.issue(claims, a.now(), o.ttl)
}

func (a *Authority) issue(claims Claims, now time.Time, ttl time.Duration) (*IssuedToken, error) {
	if ttl < time.Second {
		return nil, fmt.Errorf("%w: ttl must be at least one second", ErrInvalidClaims)
	}
	if err := claims.validate(); err != nil {
		return nil, err
	}

	extra, err := claims.normalizedExtra()
	if err != nil {
		return nil, err
	}

	out := claims
	out.Permissions = append([]string(nil), claims.Permissions...)
	out.Extra = extra
	out.IssuedAt = now.Unix()
	out.ExpiresAt = out.IssuedAt + ttlSeconds(ttl)
	out.TokenID = uuid.NewString()

	signed, err := jwt.NewWithClaims(a.method, out.toMapClaims()).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &IssuedToken{Token: signed, ExpiresAt: out.ExpiresAt, Claims: out}, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	secs := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}

// Verify authenticates token and returns its claims. When requiredRoles is
// non-empty the token's role must be one of them; a token without a role fails.
func (a *Authority) Verify(token string, requiredRoles ...domain.RoleName) (*Claims, error) {
	return a.verifyAt(token, a.now(), requiredRoles)
}

func (a *Authority) verifyAt(token string, now time.Time, requiredRoles []domain.RoleName) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		// exp has second precision; one second of leeway makes the library
		// accept exactly the tokens for which now.Unix() <= exp.
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	raw := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, raw, a.keyFunc); err != nil {
		return nil, classifyParseError(err)
	}

	claims, err := claimsFromMap(raw)
	if err != nil {
		return nil, err
	}
	if now.Unix() > claims.ExpiresAt {
		return nil, fmt.Errorf("%w: expired at %d", ErrExpired, claims.ExpiresAt)
	}
	if len(requiredRoles) > 0 && !claims.HasRole(requiredRoles...) {
		if claims.Role == "" {
			return nil, fmt.Errorf("%w: no role assigned", ErrForbidden)
		}
		return nil, fmt.Errorf("%w: role %q not in %v", ErrForbidden, claims.Role, requiredRoles)
	}
	return claims, nil
}

// Refresh verifies token and re-issues its payload as a refresh token with the
// refresh TTL. The role snapshot is copied unless role revalidation is enabled.
func (a *Authority) Refresh(ctx context.Context, token string) (*IssuedToken, error) {
	claims, err := a.Verify(token)
	if err != nil {
		return nil, err
	}

	next := *claims
	next.ExpiresAt = 0
	next.IsRefresh = true

	if a.refreshRevalidatesRole {
		account, err := loadAccount(ctx, a.accounts, next.SubjectID)
		if err != nil {
			return nil, err
		}
		role, err := loadRole(ctx, a.roles, account)
		if err != nil {
			return nil, err
		}
		next.Role = role.Name
		next.RoleID = role.ID
		next.Permissions = append([]string(nil), role.Permissions...)
	}

	return a.issue(next, a.now(), a.refreshTTL)
}

// AccessTTL is the default lifetime of issued tokens.
func (a *Authority) AccessTTL() time.Duration {
	return a.accessTTL
}

// RefreshTTL is the lifetime of refreshed tokens.
func (a *Authority) RefreshTTL() time.Duration {
	return a.refreshTTL
}

func (a *Authority) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return a.secret, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
