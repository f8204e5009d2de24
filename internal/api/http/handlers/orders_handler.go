package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// OrdersHandler manages booking endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// Book POST /booking.
func (h *OrdersHandler) Book(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.BookOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	order, err := h.service.Book(c.UserContext(), caller, service.BookInput{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		Location:      req.Location,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orderResponse(order)})
}

// UpdateStatus PUT /booking/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	order, err := h.service.UpdateStatus(c.UserContext(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// Get GET /booking/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	order, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// ListMine GET /booking/mine.
func (h *OrdersHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListForVendor(c.UserContext(), caller.AccountID, parseOrderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderList(orders)})
}

// ListReceived GET /booking/supplier.
func (h *OrdersHandler) ListReceived(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListForSupplier(c.UserContext(), caller.AccountID, parseOrderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderList(orders)})
}

func parseOrderQuery(c *fiber.Ctx) service.OrderListFilter {
	var filter service.OrderListFilter
	if statusStr := c.Query("status"); statusStr != "" {
		for _, s := range strings.Split(statusStr, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, domain.OrderStatus(strings.ToLower(s)))
			}
		}
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter
}

func orderList(orders []domain.Order) []dto.OrderResponse {
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, orderResponse(&orders[i]))
	}
	return items
}
