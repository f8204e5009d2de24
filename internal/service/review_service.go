package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ReviewService records vendor ratings of suppliers.
type ReviewService struct {
	reviews  repository.ReviewRepository
	accounts repository.AccountRepository
	publisher
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewReviewService builds the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		reviews:   deps.ReviewRepo,
		accounts:  deps.AccountRepo,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// ReviewInput describes a new review.
type ReviewInput struct {
	SupplierID string
	Rating     int
	Comment    *string
}

// Give records a review of a supplier by the calling vendor.
func (s *ReviewService) Give(ctx context.Context, caller Caller, in ReviewInput) (*domain.Review, error) {
	if caller.Role != domain.RoleVendor {
		return nil, fmt.Errorf("%w: only vendors can review", auth.ErrForbidden)
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating),
			map[string]any{"rating": in.Rating},
		)
	}
	if in.Comment != nil {
		trimmed := strings.TrimSpace(*in.Comment)
		if trimmed == "" {
			in.Comment = nil
		} else {
			in.Comment = &trimmed
		}
	}

	supplier, err := s.accounts.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplier")
	}
	if supplier.RoleName != domain.RoleSupplier {
		return nil, apperrors.NewValidationError("reviewed account is not a supplier", map[string]any{"supplier_id": in.SupplierID})
	}

	review := &domain.Review{
		VendorID:   caller.AccountID,
		SupplierID: supplier.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventReviewGiven,
		ResourceID: review.ID,
		Actor:      caller.actor(),
		Payload:    events.ReviewGivenPayload{SupplierID: review.SupplierID, Rating: review.Rating},
	})
	return review, nil
}

// ListForSupplier returns reviews received by supplierID.
func (s *ReviewService) ListForSupplier(ctx context.Context, supplierID string, limit, offset int) ([]domain.Review, error) {
	return s.reviews.ListBySupplier(ctx, supplierID, repository.Page{Limit: limit, Offset: offset})
}

// ListByVendor returns reviews written by vendorID.
func (s *ReviewService) ListByVendor(ctx context.Context, vendorID string, limit, offset int) ([]domain.Review, error) {
	return s.reviews.ListByVendor(ctx, vendorID, repository.Page{Limit: limit, Offset: offset})
}

// SupplierRating returns the average rating and review count of supplierID.
func (s *ReviewService) SupplierRating(ctx context.Context, supplierID string) (*domain.SupplierRating, error) {
	rating, err := s.reviews.SupplierRating(ctx, supplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplier")
	}
	return rating, nil
}
