package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

type authFixture struct {
	svc        *AuthService
	accounts   *fakeAccountRepo
	roles      *fakeRoleRepo
	authority  *auth.Authority
	dispatcher *recordingDispatcher
	revoker    *recordingRevoker
	now        time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		accounts:   newFakeAccountRepo(),
		roles:      newFakeRoleRepo(),
		dispatcher: &recordingDispatcher{},
		revoker:    &recordingRevoker{},
		now:        time.Unix(1_700_000_000, 0),
	}
	authority, err := auth.NewAuthority(auth.AuthorityConfig{
		Secret: "service-test-secret",
		Now:    func() time.Time { return f.now },
	}, nil, nil)
	require.NoError(t, err)
	f.authority = authority

	f.svc = NewAuthService(AuthDependencies{
		AccountRepo: f.accounts,
		RoleRepo:    f.roles,
		Authority:   authority,
		Revoker:     f.revoker,
		Dispatcher:  f.dispatcher,
		BcryptCost:  bcrypt.MinCost,
	})
	require.NoError(t, f.svc.SeedRoles(context.Background()))
	return f
}

func (f *authFixture) signup(t *testing.T, username string, role domain.RoleName) *domain.Account {
	t.Helper()
	account, err := f.svc.Signup(context.Background(), SignupInput{
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Email:     username + "@example.com",
		Password:  "password123",
		Role:      role,
	})
	require.NoError(t, err)
	return account
}

func statusOf(err error) int {
	return apperrors.ToDomainError(auth.ToHTTPError(err)).HTTPStatus
}

func TestSeedRolesIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.SeedRoles(context.Background()))

	roles, err := f.svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestSignupDefaultsToVendor(t *testing.T) {
	f := newAuthFixture(t)
	account := f.signup(t, "alice", "")

	assert.Equal(t, domain.RoleVendor, account.RoleName)
	assert.NotEmpty(t, account.RoleID)
	assert.True(t, account.IsActive)
	assert.NotEqual(t, "password123", account.PasswordHash)
	assert.Equal(t, []events.EventType{events.EventAccountRegistered}, f.dispatcher.types())
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "taken", domain.RoleSupplier)

	tests := []struct {
		name   string
		in     SignupInput
		status int
	}{
		{"missing fields", SignupInput{Username: "bob"}, http.StatusBadRequest},
		{"bad email", SignupInput{Username: "bob", FirstName: "B", LastName: "B", Email: "nope", Password: "password123"}, http.StatusBadRequest},
		{"short password", SignupInput{Username: "bob", FirstName: "B", LastName: "B", Email: "bob@example.com", Password: "short"}, http.StatusBadRequest},
		{"admin role", SignupInput{Username: "bob", FirstName: "B", LastName: "B", Email: "bob@example.com", Password: "password123", Role: domain.RoleAdmin}, http.StatusBadRequest},
		{"duplicate username", SignupInput{Username: "taken", FirstName: "B", LastName: "B", Email: "other@example.com", Password: "password123"}, http.StatusConflict},
		{"duplicate email", SignupInput{Username: "other", FirstName: "B", LastName: "B", Email: "TAKEN@example.com", Password: "password123"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Signup(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.status, statusOf(err))
		})
	}
}

func TestSigninIssuesRoleToken(t *testing.T) {
	f := newAuthFixture(t)
	supplier := f.signup(t, "sam", domain.RoleSupplier)

	for _, identifier := range []string{"sam", "sam@example.com"} {
		session, err := f.svc.Signin(context.Background(), identifier, "password123")
		require.NoError(t, err, identifier)
		assert.Equal(t, supplier.ID, session.Account.ID)
		assert.Equal(t, f.now.Unix()+int64(auth.DefaultAccessTTL/time.Second), session.ExpiresAt)

		claims, err := f.authority.Verify(session.Token, domain.RoleSupplier)
		require.NoError(t, err)
		assert.Equal(t, supplier.ID, claims.SubjectID)
		assert.True(t, claims.Can(domain.PermissionManageProducts))
		assert.False(t, claims.IsRefresh)
	}

	stored, err := f.accounts.GetByID(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.LoginCount)
}

func TestSigninFailures(t *testing.T) {
	f := newAuthFixture(t)
	account := f.signup(t, "victor", "")

	_, err := f.svc.Signin(context.Background(), "victor", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Signin(context.Background(), "nobody", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Signin(context.Background(), "", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, f.accounts.SetActive(context.Background(), account.ID, false))
	_, err = f.svc.Signin(context.Background(), "victor", "password123")
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestRefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "rita", "")
	session, err := f.svc.Signin(context.Background(), "rita", "password123")
	require.NoError(t, err)
	sessionClaims, err := f.authority.Verify(session.Token)
	require.NoError(t, err)

	f.now = f.now.Add(5 * time.Minute)
	refreshed, err := f.svc.Refresh(context.Background(), session.Token)
	require.NoError(t, err)
	assert.True(t, refreshed.Claims.IsRefresh)
	assert.Equal(t, f.now.Unix()+int64(auth.DefaultRefreshTTL/time.Second), refreshed.ExpiresAt)

	require.NoError(t, f.svc.Logout(context.Background(), &refreshed.Claims))
	assert.Equal(t, []string{sessionClaims.TokenID, refreshed.Claims.TokenID}, f.revoker.revoked)
	assert.ErrorIs(t, f.svc.Logout(context.Background(), nil), auth.ErrMissingCredential)

	assert.Contains(t, f.dispatcher.types(), events.EventTokenRefreshed)
	assert.Contains(t, f.dispatcher.types(), events.EventAccountLoggedOut)

	f.now = f.now.Add(time.Hour)
	_, err = f.svc.Refresh(context.Background(), session.Token)
	assert.ErrorIs(t, err, auth.ErrExpired)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "remy", "")
	ctx := context.Background()

	session, err := f.svc.Signin(ctx, "remy", "password123")
	require.NoError(t, err)
	claims, err := f.authority.Verify(session.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, claims))
	_, err = f.svc.Refresh(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	other, err := f.svc.Signin(ctx, "remy", "password123")
	require.NoError(t, err)
	refreshed, err := f.svc.Refresh(ctx, other.Token)
	require.NoError(t, err)
	_, err = f.svc.Refresh(ctx, other.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, refreshed.Token)
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	account := f.signup(t, "carl", "")
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, account.ID, "wrong-password", "new-password-1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, account.ID, "password123", "short")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, f.svc.ChangePassword(ctx, account.ID, "password123", "new-password-1"))
	_, err = f.svc.Signin(ctx, "carl", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.svc.Signin(ctx, "carl", "new-password-1")
	assert.NoError(t, err)

	err = f.svc.ChangePassword(ctx, "missing", "password123", "new-password-2")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	account := f.signup(t, "pat", "")
	f.signup(t, "other", "")
	ctx := context.Background()

	name := "Patricia"
	updated, err := f.svc.UpdateProfile(ctx, account.ID, ProfileInput{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.FirstName)

	taken := "other@example.com"
	_, err = f.svc.UpdateProfile(ctx, account.ID, ProfileInput{Email: &taken})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	blank := " "
	_, err = f.svc.UpdateProfile(ctx, account.ID, ProfileInput{LastName: &blank})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	profile, err := f.svc.Profile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patricia", profile.FirstName)
}

func TestSetAccountActive(t *testing.T) {
	f := newAuthFixture(t)
	vendor := f.signup(t, "vera", "")
	admin := Caller{AccountID: "admin-1", Role: domain.RoleAdmin}
	ctx := context.Background()

	_, err := f.svc.SetAccountActive(ctx, Caller{AccountID: vendor.ID, Role: domain.RoleVendor}, vendor.ID, false)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.SetAccountActive(ctx, admin, admin.AccountID, false)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	updated, err := f.svc.SetAccountActive(ctx, admin, vendor.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	inactive := false
	list, err := f.svc.ListAccounts(ctx, repository.AccountFilter{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, vendor.ID, list[0].ID)

	_, err = f.svc.SetAccountActive(ctx, admin, "missing", true)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
