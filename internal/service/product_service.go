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

// ProductService manages the supplier catalogue.
type ProductService struct {
	products repository.ProductRepository
	publisher
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewProductService builds the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products:  deps.ProductRepo,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// ProductInput describes product creation and full updates.
type ProductInput struct {
	Name              string
	Category          string
	PricePerUnit      float64
	Unit              string
	AvailableQuantity float64
	ImageURL          *string
	Location          *domain.Location
}

// ProductListFilter narrows catalogue listings.
type ProductListFilter struct {
	SupplierID *string
	Category   *string
	SearchTerm *string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
	Limit      int
	Offset     int
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Unit = strings.TrimSpace(in.Unit)

	details := map[string]any{}
	if in.Name == "" {
		details["name"] = "required"
	}
	if in.PricePerUnit <= 0 {
		details["price_per_unit"] = "must be positive"
	}
	if in.AvailableQuantity < 0 {
		details["available_quantity"] = "cannot be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

// Create adds a product owned by the calling supplier.
func (s *ProductService) Create(ctx context.Context, caller Caller, in ProductInput) (*domain.Product, error) {
	if caller.Role != domain.RoleSupplier {
		return nil, fmt.Errorf("%w: only suppliers own products", auth.ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &domain.Product{
		SupplierID:        caller.AccountID,
		Name:              in.Name,
		Category:          in.Category,
		PricePerUnit:      in.PricePerUnit,
		Unit:              in.Unit,
		AvailableQuantity: in.AvailableQuantity,
		ImageURL:          in.ImageURL,
		Location:          in.Location,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventProductCreated,
		ResourceID: product.ID,
		Actor:      caller.actor(),
		Payload:    events.ProductPayload{SupplierID: product.SupplierID, Name: product.Name, Price: product.PricePerUnit},
	})
	return product, nil
}

// Update replaces the mutable fields of a product. Only its supplier or an
// admin may update it.
func (s *ProductService) Update(ctx context.Context, caller Caller, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Category = in.Category
	product.PricePerUnit = in.PricePerUnit
	product.Unit = in.Unit
	product.AvailableQuantity = in.AvailableQuantity
	product.ImageURL = in.ImageURL
	product.Location = in.Location
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventProductUpdated,
		ResourceID: product.ID,
		Actor:      caller.actor(),
		Payload:    events.ProductPayload{SupplierID: product.SupplierID, Name: product.Name, Price: product.PricePerUnit},
	})
	return product, nil
}

// Delete removes a product. Only its supplier or an admin may delete it.
func (s *ProductService) Delete(ctx context.Context, caller Caller, id string) error {
	product, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewConflict("product has bookings", map[string]any{"product_id": product.ID})
		}
		return notFoundOr(err, "product")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventProductDeleted,
		ResourceID: product.ID,
		Actor:      caller.actor(),
		Payload:    events.ProductPayload{SupplierID: product.SupplierID, Name: product.Name, Price: product.PricePerUnit},
	})
	return nil
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// List returns products matching filter.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, apperrors.NewValidationError("min_price exceeds max_price", nil)
	}
	return s.products.ListWithFilter(ctx, repository.ProductFilter{
		SupplierID: filter.SupplierID,
		Category:   filter.Category,
		SearchTerm: filter.SearchTerm,
		MinPrice:   filter.MinPrice,
		MaxPrice:   filter.MaxPrice,
		InStock:    filter.InStock,
		Page:       repository.Page{Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (s *ProductService) owned(ctx context.Context, caller Caller, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	if !caller.IsAdmin() && product.SupplierID != caller.AccountID {
		return nil, fmt.Errorf("%w: product belongs to another supplier", auth.ErrForbidden)
	}
	return product, nil
}
