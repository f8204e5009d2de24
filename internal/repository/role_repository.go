package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RoleRepository stores named permission sets.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

const roleColumns = `id, name, priority, permissions, created_at, updated_at`

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, priority, permissions)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, string(role.Name), role.Priority, permissionsArg(role.Permissions)).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id=$1`, id))
}

func (r *roleRepository) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name=$1`, string(name)))
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY priority, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *role)
	}
	return result, rows.Err()
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	if err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Priority,
		&role.Permissions,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func permissionsArg(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}
