package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ReviewsHandler manages supplier review endpoints.
type ReviewsHandler struct {
	service *service.ReviewService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviewService *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{service: reviewService}
}

// Give POST /review.
func (h *ReviewsHandler) Give(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SupplierID == "" {
		return apperrors.NewValidationError("supplier_id required", nil)
	}
	review, err := h.service.Give(c.UserContext(), caller, service.ReviewInput{
		SupplierID: req.SupplierID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reviewResponse(review)})
}

// ListForSupplier GET /review/supplier/:id. The response carries the rating summary.
func (h *ReviewsHandler) ListForSupplier(c *fiber.Ctx) error {
	supplierID := c.Params("id")
	limit, offset := parsePage(c)
	reviews, err := h.service.ListForSupplier(c.UserContext(), supplierID, limit, offset)
	if err != nil {
		return err
	}
	rating, err := h.service.SupplierRating(c.UserContext(), supplierID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": reviewList(reviews),
		"meta": dto.SupplierRatingResponse{SupplierID: rating.SupplierID, Average: rating.Average, Count: rating.Count},
	})
}

// ListMine GET /review/mine.
func (h *ReviewsHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c)
	reviews, err := h.service.ListByVendor(c.UserContext(), caller.AccountID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reviewList(reviews)})
}

func reviewList(reviews []domain.Review) []dto.ReviewResponse {
	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviewResponse(&reviews[i]))
	}
	return items
}
