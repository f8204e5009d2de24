package auth

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// Sentinel errors returned by the token authority and its guards. Every one of
// them is terminal for the operation that produced it.
var (
	ErrMissingCredential = errors.New("auth: missing credential")
	ErrInvalidSignature  = errors.New("auth: invalid token signature")
	// ErrMalformedToken also matches ErrInvalidSignature.
	ErrMalformedToken        = fmt.Errorf("auth: malformed token: %w", ErrInvalidSignature)
	ErrExpired               = errors.New("auth: token expired")
	ErrForbidden             = errors.New("auth: insufficient role")
	ErrInvalidClaims         = errors.New("auth: invalid claims")
	ErrInvalidCredentials    = errors.New("auth: invalid credentials")
	ErrTokenRevoked          = errors.New("auth: token revoked")
	ErrAccountNotFound       = errors.New("auth: account not found")
	ErrAccountInactive       = errors.New("auth: account inactive")
	ErrDirectoryLookupFailed = errors.New("auth: directory lookup failed")
)

// lookupFailed wraps a collaborator failure so both the sentinel and the cause match.
func lookupFailed(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDirectoryLookupFailed, what, err)
}

// ToHTTPError maps an auth failure onto the API error envelope. Errors that do
// not originate in this package are returned unchanged.
func ToHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingCredential):
		return apperrors.Wrap(err, "MISSING_CREDENTIAL", "authorization header missing", http.StatusUnauthorized)
	case errors.Is(err, ErrMalformedToken):
		return apperrors.Wrap(err, "MALFORMED_TOKEN", "malformed token", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidSignature):
		return apperrors.Wrap(err, "INVALID_SIGNATURE", "invalid token", http.StatusUnauthorized)
	case errors.Is(err, ErrExpired):
		return apperrors.Wrap(err, "TOKEN_EXPIRED", "token has expired", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.Wrap(err, "INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized)
	case errors.Is(err, ErrTokenRevoked):
		return apperrors.Wrap(err, "TOKEN_REVOKED", "token has been revoked", http.StatusUnauthorized)
	case errors.Is(err, ErrAccountNotFound):
		return apperrors.Wrap(err, "ACCOUNT_NOT_FOUND", "account not found", http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		return apperrors.Wrap(err, "FORBIDDEN", "insufficient permissions", http.StatusForbidden)
	case errors.Is(err, ErrAccountInactive):
		return apperrors.Wrap(err, "ACCOUNT_INACTIVE", "account is deactivated", http.StatusForbidden)
	case errors.Is(err, ErrDirectoryLookupFailed):
		return apperrors.Wrap(err, "DIRECTORY_UNAVAILABLE", "account directory unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, ErrInvalidClaims):
		return apperrors.Wrap(err, "VALIDATION_FAILED", "invalid token claims", http.StatusBadRequest)
	}
	return err
}
