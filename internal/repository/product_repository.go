package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ProductFilter captures catalogue search parameters.
type ProductFilter struct {
	SupplierID *string
	Category   *string
	SearchTerm *string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
	Page       Page
}

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListWithFilter(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	// ReserveQuantity atomically subtracts qty from the available quantity and
	// fails with pgx.ErrNoRows when the product is missing or short on stock.
	ReserveQuantity(ctx context.Context, id string, qty float64) (*domain.Product, error)
	ReleaseQuantity(ctx context.Context, id string, qty float64) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, supplier_id, name, category, price_per_unit, unit, available_quantity,
               image_url, location, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (supplier_id, name, category, price_per_unit, unit, available_quantity, image_url, location)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.SupplierID,
		product.Name,
		product.Category,
		product.PricePerUnit,
		product.Unit,
		product.AvailableQuantity,
		product.ImageURL,
		product.Location,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if !isID(product.ID) {
		return pgx.ErrNoRows
	}
	const query = `
        UPDATE products SET name=$1, category=$2, price_per_unit=$3, unit=$4, available_quantity=$5,
            image_url=$6, location=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Category,
		product.PricePerUnit,
		product.Unit,
		product.AvailableQuantity,
		product.ImageURL,
		product.Location,
		product.ID,
	).Scan(&product.UpdatedAt)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	if !isID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *productRepository) ReserveQuantity(ctx context.Context, id string, qty float64) (*domain.Product, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `
        UPDATE products SET available_quantity = available_quantity - $1, updated_at=NOW()
        WHERE id=$2 AND available_quantity >= $1
        RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, query, qty, id))
}

func (r *productRepository) ReleaseQuantity(ctx context.Context, id string, qty float64) error {
	if !isID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx,
		`UPDATE products SET available_quantity = available_quantity + $1, updated_at=NOW() WHERE id=$2`, qty, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) ListWithFilter(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SupplierID != nil {
		if !isID(*filter.SupplierID) {
			return nil, nil
		}
		args = append(args, *filter.SupplierID)
		clauses = append(clauses, fmt.Sprintf("supplier_id=$%d", len(args)))
	}
	if filter.Category != nil && *filter.Category != "" {
		args = append(args, strings.ToLower(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("LOWER(category)=$%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price_per_unit >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price_per_unit <= $%d", len(args)))
	}
	if filter.InStock {
		clauses = append(clauses, "available_quantity > 0")
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(category) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := filter.Page.normalize()
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		productColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.SupplierID,
		&product.Name,
		&product.Category,
		&product.PricePerUnit,
		&product.Unit,
		&product.AvailableQuantity,
		&product.ImageURL,
		&product.Location,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}
