package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// ProductsHandler manages catalogue endpoints.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// Create POST /product.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	in, err := parseProductRequest(c)
	if err != nil {
		return err
	}
	product, err := h.service.Create(c.UserContext(), caller, in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": productResponse(product)})
}

// Update PUT /product/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	in, err := parseProductRequest(c)
	if err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), caller, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// Delete DELETE /product/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /product/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// List GET /product.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	filter := parseProductQuery(c)
	filter.SupplierID = optionalQuery(c, "supplier_id")
	return h.list(c, filter)
}

// ListMine GET /product/mine.
func (h *ProductsHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	filter := parseProductQuery(c)
	filter.SupplierID = &caller.AccountID
	return h.list(c, filter)
}

func (h *ProductsHandler) list(c *fiber.Ctx, filter service.ProductListFilter) error {
	products, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseProductRequest(c *fiber.Ctx) (service.ProductInput, error) {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ProductInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return service.ProductInput{
		Name:              req.Name,
		Category:          req.Category,
		PricePerUnit:      req.PricePerUnit,
		Unit:              req.Unit,
		AvailableQuantity: req.AvailableQuantity,
		ImageURL:          req.ImageURL,
		Location:          req.Location,
	}, nil
}

func parseProductQuery(c *fiber.Ctx) service.ProductListFilter {
	filter := service.ProductListFilter{
		Category:   optionalQuery(c, "category"),
		SearchTerm: optionalQuery(c, "search"),
		MinPrice:   parseFloatQuery(c, "min_price"),
		MaxPrice:   parseFloatQuery(c, "max_price"),
	}
	if inStock := parseBoolQuery(c, "in_stock"); inStock != nil {
		filter.InStock = *inStock
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter
}

