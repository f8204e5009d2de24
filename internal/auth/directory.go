package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// AccountDirectory resolves accounts by id. A missing account is reported as pgx.ErrNoRows.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// RoleDirectory resolves roles by name or id. A missing role is reported as pgx.ErrNoRows.
type RoleDirectory interface {
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
}

func loadAccount(ctx context.Context, accounts AccountDirectory, id string) (*domain.Account, error) {
	account, err := accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return nil, lookupFailed("account", err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrAccountInactive, id)
	}
	return account, nil
}

func loadRole(ctx context.Context, roles RoleDirectory, account *domain.Account) (*domain.Role, error) {
	var (
		role *domain.Role
		err  error
	)
	if account.RoleID != "" {
		role, err = roles.GetByID(ctx, account.RoleID)
	} else {
		role, err = roles.GetByName(ctx, account.RoleName)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s has no role", ErrForbidden, account.ID)
		}
		return nil, lookupFailed("role", err)
	}
	return role, nil
}
