package domain

import "time"

// OrderStatus enumerates booking lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus enumerates payment states of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodWallet PaymentMethod = "Wallet"
	PaymentMethodCard   PaymentMethod = "Card"
)

// Order is a vendor booking against a supplier product.
type Order struct {
	ID            string
	VendorID      string
	SupplierID    string
	ProductID     string
	Quantity      int
	TotalPrice    float64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod *PaymentMethod
	Location      *Location
	OrderDate     time.Time
	UpdatedAt     time.Time
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsValidOrderStatus reports whether s is a known status.
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether m is an accepted payment channel.
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCOD, PaymentMethodWallet, PaymentMethodCard:
		return true
	}
	return false
}
