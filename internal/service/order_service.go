package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// OrderService coordinates vendor bookings against supplier stock.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	publisher
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:    deps.OrderRepo,
		products:  deps.ProductRepo,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// BookInput describes a booking request.
type BookInput struct {
	ProductID     string
	Quantity      int
	PaymentMethod *domain.PaymentMethod
	Location      *domain.Location
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	Statuses []domain.OrderStatus
	Limit    int
	Offset   int
}

// Book reserves stock of a product and records a pending order for the
// calling vendor. The total price is quantity times the unit price.
func (s *OrderService) Book(ctx context.Context, caller Caller, in BookInput) (*domain.Order, error) {
	if caller.Role != domain.RoleVendor {
		return nil, fmt.Errorf("%w: only vendors can book", auth.ErrForbidden)
	}
	if in.ProductID == "" {
		return nil, apperrors.NewValidationError("product_id is required", nil)
	}
	if in.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"quantity": in.Quantity})
	}
	if in.PaymentMethod != nil && !domain.IsValidPaymentMethod(*in.PaymentMethod) {
		return nil, apperrors.NewValidationError("unsupported payment method", map[string]any{"payment_method": *in.PaymentMethod})
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	if float64(in.Quantity) > product.AvailableQuantity {
		return nil, apperrors.NewConflict("insufficient quantity", map[string]any{"available_quantity": product.AvailableQuantity})
	}

	reserved, err := s.products.ReserveQuantity(ctx, product.ID, float64(in.Quantity))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewConflict("insufficient quantity", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve quantity: %w", err)
	}

	location := in.Location
	if location == nil {
		location = reserved.Location
	}
	order := &domain.Order{
		VendorID:      caller.AccountID,
		SupplierID:    reserved.SupplierID,
		ProductID:     reserved.ID,
		Quantity:      in.Quantity,
		TotalPrice:    totalPrice(in.Quantity, reserved.PricePerUnit),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: in.PaymentMethod,
		Location:      location,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if releaseErr := s.products.ReleaseQuantity(ctx, reserved.ID, float64(in.Quantity)); releaseErr != nil {
			s.logger.Error("release reserved quantity", zap.String("product_id", reserved.ID), zap.Error(releaseErr))
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventOrderBooked,
		ResourceID: order.ID,
		Actor:      caller.actor(),
		Payload: events.OrderBookedPayload{
			ProductID:  order.ProductID,
			SupplierID: order.SupplierID,
			Quantity:   order.Quantity,
			TotalPrice: order.TotalPrice,
		},
	})
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Only the supplier of the
// order or an admin may do so. Cancelling returns the quantity to stock.
func (s *OrderService) UpdateStatus(ctx context.Context, caller Caller, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	if !caller.IsAdmin() && order.SupplierID != caller.AccountID {
		return nil, fmt.Errorf("%w: order belongs to another supplier", auth.ErrForbidden)
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, apperrors.NewConflict("status transition not allowed", map[string]any{
			"from": order.Status,
			"to":   status,
		})
	}

	oldStatus := order.Status
	updated, err := s.orders.UpdateStatus(ctx, order.ID, oldStatus, status, nextPaymentStatus(order, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewConflict("order changed concurrently", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if status == domain.OrderStatusCancelled {
		if err := s.products.ReleaseQuantity(ctx, updated.ProductID, float64(updated.Quantity)); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("release cancelled quantity", zap.String("order_id", updated.ID), zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventOrderStatusChanged,
		ResourceID: updated.ID,
		Actor:      caller.actor(),
		Payload:    events.OrderStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return updated, nil
}

// Get returns an order visible to caller: its vendor, its supplier or an admin.
func (s *OrderService) Get(ctx context.Context, caller Caller, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	if !caller.IsAdmin() && order.VendorID != caller.AccountID && order.SupplierID != caller.AccountID {
		return nil, fmt.Errorf("%w: not a party to this order", auth.ErrForbidden)
	}
	return order, nil
}

// ListForVendor returns orders placed by vendorID.
func (s *OrderService) ListForVendor(ctx context.Context, vendorID string, filter OrderListFilter) ([]domain.Order, error) {
	return s.list(ctx, repository.OrderFilter{VendorID: &vendorID}, filter)
}

// ListForSupplier returns orders received by supplierID.
func (s *OrderService) ListForSupplier(ctx context.Context, supplierID string, filter OrderListFilter) ([]domain.Order, error) {
	return s.list(ctx, repository.OrderFilter{SupplierID: &supplierID}, filter)
}

func (s *OrderService) list(ctx context.Context, base repository.OrderFilter, filter OrderListFilter) ([]domain.Order, error) {
	for _, st := range filter.Statuses {
		if !domain.IsValidOrderStatus(st) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": st})
		}
	}
	base.Statuses = filter.Statuses
	base.Page = repository.Page{Limit: filter.Limit, Offset: filter.Offset}
	return s.orders.ListWithFilter(ctx, base)
}

func totalPrice(quantity int, unitPrice float64) float64 {
	return math.Round(float64(quantity)*unitPrice*100) / 100
}

func nextPaymentStatus(order *domain.Order, status domain.OrderStatus) domain.PaymentStatus {
	switch status {
	case domain.OrderStatusDelivered:
		return domain.PaymentStatusCompleted
	case domain.OrderStatusCancelled:
		if order.PaymentStatus == domain.PaymentStatusPending {
			return domain.PaymentStatusFailed
		}
	}
	return order.PaymentStatus
}
