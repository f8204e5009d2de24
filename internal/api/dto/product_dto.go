package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ProductRequest payload for creating or replacing a product.
type ProductRequest struct {
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	PricePerUnit      float64          `json:"price_per_unit"`
	Unit              string           `json:"unit"`
	AvailableQuantity float64          `json:"available_quantity"`
	ImageURL          *string          `json:"image_url"`
	Location          *domain.Location `json:"location"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID                string           `json:"id"`
	SupplierID        string           `json:"supplier_id"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	PricePerUnit      float64          `json:"price_per_unit"`
	Unit              string           `json:"unit"`
	AvailableQuantity float64          `json:"available_quantity"`
	ImageURL          *string          `json:"image_url"`
	Location          *domain.Location `json:"location"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
