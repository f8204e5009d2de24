package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// AccountFilter narrows account listings.
type AccountFilter struct {
	Role     *domain.RoleName
	IsActive *bool
	Search   *string
	Page     Page
}

// AccountRepository defines persistence access for marketplace accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	IncrementLoginCount(ctx context.Context, id string) (int, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `
        a.id, a.username, a.first_name, a.last_name, a.email, a.password_hash,
        COALESCE(a.role_id::text, ''), COALESCE(r.name, ''), a.role_status, a.login_count,
        a.is_active, a.created_at, a.updated_at`

const accountFrom = `FROM accounts a LEFT JOIN roles r ON r.id = a.role_id`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, first_name, last_name, email, password_hash, role_id, role_status, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, login_count, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Username,
		account.FirstName,
		account.LastName,
		account.Email,
		account.PasswordHash,
		nullable(account.RoleID),
		account.RoleStatus,
		account.IsActive,
	).Scan(&account.ID, &account.LoginCount, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	if !isID(account.ID) {
		return pgx.ErrNoRows
	}
	const query = `
        UPDATE accounts SET first_name=$1, last_name=$2, email=$3, role_id=$4, role_status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		account.FirstName,
		account.LastName,
		account.Email,
		nullable(account.RoleID),
		account.RoleStatus,
		account.ID,
	).Scan(&account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` `+accountFrom+` WHERE a.id=$1`, id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` `+accountFrom+` WHERE a.username=$1`, username)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` `+accountFrom+` WHERE LOWER(a.email)=LOWER($1)`, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("r.name=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("a.is_active=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(a.username) LIKE %s OR LOWER(a.email) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := filter.Page.normalize()
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY a.created_at DESC LIMIT %d OFFSET %d`,
		accountColumns, accountFrom, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) IncrementLoginCount(ctx context.Context, id string) (int, error) {
	if !isID(id) {
		return 0, pgx.ErrNoRows
	}
	const query = `UPDATE accounts SET login_count = login_count + 1, updated_at=NOW() WHERE id=$1 RETURNING login_count`
	var count int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *accountRepository) SetActive(ctx context.Context, id string, active bool) error {
	if !isID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE accounts SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if !isID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&account.RoleID,
		&account.RoleName,
		&account.RoleStatus,
		&account.LoginCount,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
