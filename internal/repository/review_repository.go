package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ReviewRepository encapsulates review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListBySupplier(ctx context.Context, supplierID string, page Page) ([]domain.Review, error)
	ListByVendor(ctx context.Context, vendorID string, page Page) ([]domain.Review, error)
	SupplierRating(ctx context.Context, supplierID string) (*domain.SupplierRating, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

const reviewColumns = `id, vendor_id, supplier_id, rating, comment, created_at`

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (vendor_id, supplier_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		review.VendorID,
		review.SupplierID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *reviewRepository) ListBySupplier(ctx context.Context, supplierID string, page Page) ([]domain.Review, error) {
	return r.list(ctx, "supplier_id", supplierID, page)
}

func (r *reviewRepository) ListByVendor(ctx context.Context, vendorID string, page Page) ([]domain.Review, error) {
	return r.list(ctx, "vendor_id", vendorID, page)
}

func (r *reviewRepository) list(ctx context.Context, column, id string, page Page) ([]domain.Review, error) {
	if !isID(id) {
		return nil, nil
	}
	limit, offset := page.normalize()
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` + column + `=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.VendorID,
			&review.SupplierID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}

func (r *reviewRepository) SupplierRating(ctx context.Context, supplierID string) (*domain.SupplierRating, error) {
	if !isID(supplierID) {
		return nil, pgx.ErrNoRows
	}
	const query = `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE supplier_id=$1`
	rating := &domain.SupplierRating{SupplierID: supplierID}
	if err := r.pool.QueryRow(ctx, query, supplierID).Scan(&rating.Average, &rating.Count); err != nil {
		return nil, err
	}
	return rating, nil
}
