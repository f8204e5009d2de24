package events

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered    EventType = "account_registered"
	EventAccountSignedIn      EventType = "account_signed_in"
	EventTokenRefreshed       EventType = "token_refreshed"
	EventAccountLoggedOut     EventType = "account_logged_out"
	EventPasswordChanged      EventType = "password_changed"
	EventAccountStatusChanged EventType = "account_status_changed"
	EventProductCreated       EventType = "product_created"
	EventProductUpdated       EventType = "product_updated"
	EventProductDeleted       EventType = "product_deleted"
	EventOrderBooked          EventType = "order_booked"
	EventOrderStatusChanged   EventType = "order_status_changed"
	EventReviewGiven          EventType = "review_given"
)

// AllEventTypes lists every event a service may publish.
func AllEventTypes() []EventType {
	return []EventType{
		EventAccountRegistered,
		EventAccountSignedIn,
		EventTokenRefreshed,
		EventAccountLoggedOut,
		EventPasswordChanged,
		EventAccountStatusChanged,
		EventProductCreated,
		EventProductUpdated,
		EventProductDeleted,
		EventOrderBooked,
		EventOrderStatusChanged,
		EventReviewGiven,
	}
}

// Actor identifies the account that caused an event.
type Actor struct {
	AccountID string          `json:"account_id"`
	Role      domain.RoleName `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ResourceID string    `json:"resource_id"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// SessionPayload describes sign-in, refresh and logout events.
type SessionPayload struct {
	TokenID    string `json:"token_id,omitempty"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`
	LoginCount int    `json:"login_count,omitempty"`
}

// AccountStatusPayload payload.
type AccountStatusPayload struct {
	Active bool `json:"active"`
}

// ProductPayload payload.
type ProductPayload struct {
	SupplierID string  `json:"supplier_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price_per_unit"`
}

// OrderBookedPayload payload.
type OrderBookedPayload struct {
	ProductID  string  `json:"product_id"`
	SupplierID string  `json:"supplier_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// ReviewGivenPayload payload.
type ReviewGivenPayload struct {
	SupplierID string `json:"supplier_id"`
	Rating     int    `json:"rating"`
}
