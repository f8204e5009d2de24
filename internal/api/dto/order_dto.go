package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// BookOrderRequest payload.
type BookOrderRequest struct {
	ProductID     string                `json:"product_id"`
	Quantity      int                   `json:"quantity"`
	PaymentMethod *domain.PaymentMethod `json:"payment_method"`
	Location      *domain.Location      `json:"location"`
}

// OrderStatusRequest payload.
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID            string                `json:"id"`
	VendorID      string                `json:"vendor_id"`
	SupplierID    string                `json:"supplier_id"`
	ProductID     string                `json:"product_id"`
	Quantity      int                   `json:"quantity"`
	TotalPrice    float64               `json:"total_price"`
	Status        domain.OrderStatus    `json:"status"`
	PaymentStatus domain.PaymentStatus  `json:"payment_status"`
	PaymentMethod *domain.PaymentMethod `json:"payment_method"`
	Location      *domain.Location      `json:"location"`
	OrderDate     time.Time             `json:"order_date"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
