package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// OrderFilter captures booking search parameters.
type OrderFilter struct {
	VendorID   *string
	SupplierID *string
	ProductID  *string
	Statuses   []domain.OrderStatus
	From       *time.Time
	To         *time.Time
	Page       Page
}

// OrderRepository encapsulates booking persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus moves an order from one status to another. It returns
	// pgx.ErrNoRows when the order is missing or no longer in status from.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, payment domain.PaymentStatus) (*domain.Order, error)
	ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, vendor_id, supplier_id, product_id, quantity, total_price, status,
               payment_status, payment_method, location, order_date, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (vendor_id, supplier_id, product_id, quantity, total_price, status, payment_status, payment_method, location)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, order_date, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.VendorID,
		order.SupplierID,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.Location,
	).Scan(&order.ID, &order.OrderDate, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, payment domain.PaymentStatus) (*domain.Order, error) {
	if !isID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `
        UPDATE orders SET status=$1, payment_status=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
        RETURNING ` + orderColumns
	return scanOrder(r.pool.QueryRow(ctx, query, to, payment, id, from))
}

func (r *orderRepository) ListWithFilter(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	clauses := []string{"1=1"}
	args := []any{}

	for _, f := range []struct {
		column string
		value  *string
	}{
		{"vendor_id", filter.VendorID},
		{"supplier_id", filter.SupplierID},
		{"product_id", filter.ProductID},
	} {
		if f.value == nil {
			continue
		}
		if !isID(*f.value) {
			return nil, nil
		}
		args = append(args, *f.value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", f.column, len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("order_date <= $%d", len(args)))
	}

	limit, offset := filter.Page.normalize()
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY order_date DESC LIMIT %d OFFSET %d`,
		orderColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.VendorID,
		&order.SupplierID,
		&order.ProductID,
		&order.Quantity,
		&order.TotalPrice,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.Location,
		&order.OrderDate,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
