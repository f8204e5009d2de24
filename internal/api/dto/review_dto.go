package dto

import "time"

// ReviewRequest payload.
type ReviewRequest struct {
	SupplierID string  `json:"supplier_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID         string    `json:"id"`
	VendorID   string    `json:"vendor_id"`
	SupplierID string    `json:"supplier_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// SupplierRatingResponse summarizes a supplier's reviews.
type SupplierRatingResponse struct {
	SupplierID string  `json:"supplier_id"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}
