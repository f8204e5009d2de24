package domain

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a vendor's rating of a supplier.
type Review struct {
	ID         string
	VendorID   string
	SupplierID string
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}

// SupplierRating summarizes reviews received by a supplier.
type SupplierRating struct {
	SupplierID string
	Average    float64
	Count      int
}
