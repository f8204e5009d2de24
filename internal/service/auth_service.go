package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// TokenRevoker invalidates a token before its natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, claims *auth.Claims) (bool, error)
}

// AuthService coordinates registration, sign-in and session flows.
type AuthService struct {
	accounts   repository.AccountRepository
	roles      repository.RoleRepository
	authority  *auth.Authority
	revoker    TokenRevoker
	bcryptCost int
	publisher
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	RoleRepo    repository.RoleRepository
	Authority   *auth.Authority
	Revoker     TokenRevoker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	BcryptCost  int
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:   deps.AccountRepo,
		roles:      deps.RoleRepo,
		authority:  deps.Authority,
		revoker:    deps.Revoker,
		bcryptCost: deps.BcryptCost,
		publisher:  newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// SignupInput describes a self-registration request.
type SignupInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.RoleName
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt int64
	Account   *domain.Account
	Role      *domain.Role
}

// ProfileInput carries optional profile changes.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Signup registers a vendor or supplier account. Admins cannot self-register.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"username", in.Username},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing fields", map[string]any{"fields": missing})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	roleName := in.Role
	if roleName == "" {
		roleName = domain.RoleVendor
	}
	if roleName != domain.RoleVendor && roleName != domain.RoleSupplier {
		return nil, apperrors.NewValidationError("role not allowed for self registration", map[string]any{"role": roleName})
	}

	if err := s.ensureUnique(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load role %s: %w", roleName, err))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
		RoleStatus:   true,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("username or email already registered", nil)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventAccountRegistered,
		ResourceID: account.ID,
		Actor:      events.Actor{AccountID: account.ID, Role: account.RoleName},
	})
	return account, nil
}

func (s *AuthService) ensureUnique(ctx context.Context, username, email string) error {
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return apperrors.NewConflict("username already taken", map[string]any{"field": "username"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lookup email: %w", err)
	}
	return nil
}

// Signin authenticates by username or email and issues an access token
// carrying the account's role snapshot.
func (s *AuthService) Signin(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("missing credentials", nil)
	}

	account, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, auth.ErrAccountInactive
	}

	role, err := s.accountRole(ctx, account)
	if err != nil {
		return nil, err
	}

	count, err := s.accounts.IncrementLoginCount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	account.LoginCount = count

	issued, err := s.authority.Issue(auth.ClaimsForAccount(account, role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventAccountSignedIn,
		ResourceID: account.ID,
		Actor:      events.Actor{AccountID: account.ID, Role: issued.Claims.Role},
		Payload: events.SessionPayload{
			TokenID:    issued.Claims.TokenID,
			ExpiresAt:  issued.ExpiresAt,
			LoginCount: count,
		},
	})
	return &Session{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Account: account, Role: role}, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, identifier)
	if errors.Is(err, pgx.ErrNoRows) && strings.Contains(identifier, "@") {
		account, err = s.accounts.GetByEmail(ctx, strings.ToLower(identifier))
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// accountRole resolves the role record of account. An account without a
// resolvable role signs in with a role-less token.
func (s *AuthService) accountRole(ctx context.Context, account *domain.Account) (*domain.Role, error) {
	if account.RoleID == "" {
		return nil, nil
	}
	role, err := s.roles.GetByID(ctx, account.RoleID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("account role missing", zap.String("account_id", account.ID), zap.String("role_id", account.RoleID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load role: %w", err)
	}
	return role, nil
}

// Refresh exchanges a still-valid, unrevoked token for a refresh token and
// revokes the presented one.
func (s *AuthService) Refresh(ctx context.Context, token string) (*auth.IssuedToken, error) {
	current, err := s.authority.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, current)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, auth.ErrTokenRevoked
		}
	}

	issued, err := s.authority.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	// The presented token is single use once exchanged.
	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, current); err != nil {
			return nil, err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTokenRefreshed,
		ResourceID: issued.Claims.SubjectID,
		Actor:      events.Actor{AccountID: issued.Claims.SubjectID, Role: issued.Claims.Role},
		Payload:    events.SessionPayload{TokenID: issued.Claims.TokenID, ExpiresAt: issued.ExpiresAt},
	})
	return issued, nil
}

// Logout revokes the presented token when a revocation store is configured.
// Without one, tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return auth.ErrMissingCredential
	}
	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, claims); err != nil {
			return err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventAccountLoggedOut,
		ResourceID: claims.SubjectID,
		Actor:      events.Actor{AccountID: claims.SubjectID, Role: claims.Role},
		Payload:    events.SessionPayload{TokenID: claims.TokenID, ExpiresAt: claims.ExpiresAt},
	})
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.NewValidationError("current password is required", nil)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("new password must differ from the current one", nil)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return notFoundOr(err, "account")
	}
	if err := auth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return notFoundOr(err, "account")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventPasswordChanged,
		ResourceID: account.ID,
		Actor:      events.Actor{AccountID: account.ID, Role: account.RoleName},
	})
	return nil
}

// Profile returns the account behind accountID.
func (s *AuthService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "account")
	}
	return account, nil
}

// UpdateProfile applies the non-nil fields of in.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, in ProfileInput) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "account")
	}

	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return nil, apperrors.NewValidationError("first_name cannot be empty", nil)
		}
		account.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, apperrors.NewValidationError("last_name cannot be empty", nil)
		}
		account.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
		}
		if email != account.Email {
			if existing, err := s.accounts.GetByEmail(ctx, email); err == nil && existing.ID != account.ID {
				return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("lookup email: %w", err)
			}
		}
		account.Email = email
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		}
		return nil, notFoundOr(err, "account")
	}
	return account, nil
}

// ListAccounts returns accounts matching filter.
func (s *AuthService) ListAccounts(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	return s.accounts.List(ctx, filter)
}

// SetAccountActive activates or deactivates an account. Admins cannot
// deactivate themselves.
func (s *AuthService) SetAccountActive(ctx context.Context, caller Caller, accountID string, active bool) (*domain.Account, error) {
	if !caller.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	if caller.AccountID == accountID && !active {
		return nil, apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		return nil, notFoundOr(err, "account")
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "account")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventAccountStatusChanged,
		ResourceID: accountID,
		Actor:      caller.actor(),
		Payload:    events.AccountStatusPayload{Active: active},
	})
	return account, nil
}

// ListRoles returns every stored role.
func (s *AuthService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// SeedRoles creates the default roles that do not exist yet. Existing roles
// are left untouched so edited permissions survive restarts.
func (s *AuthService) SeedRoles(ctx context.Context) error {
	for _, role := range domain.DefaultRoles() {
		if _, err := s.roles.GetByName(ctx, role.Name); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup role %s: %w", role.Name, err)
		}
		role := role
		if err := s.roles.Create(ctx, &role); err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
		s.logger.Info("seeded role", zap.String("role", string(role.Name)), zap.String("role_id", role.ID))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
			map[string]any{"field": "password"},
		)
	}
	return nil
}
