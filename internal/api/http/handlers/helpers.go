package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

const defaultPageSize = 20

func callerFrom(c *fiber.Ctx) (service.Caller, error) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return service.Caller{}, auth.ToHTTPError(auth.ErrMissingCredential)
	}
	return service.CallerFromClaims(claims), nil
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func parseFloatQuery(c *fiber.Ctx, key string) *float64 {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if val := c.Query(key); val != "" {
		return &val
	}
	return nil
}

// parsePage converts page/page_size query params into limit and offset.
func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", defaultPageSize)
	return pageSize, (page - 1) * pageSize
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func accountResponse(account *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:                 account.ID,
		Username:           account.Username,
		FirstName:          account.FirstName,
		LastName:           account.LastName,
		Email:              account.Email,
		Role:               account.RoleName,
		RoleID:             account.RoleID,
		IsActive:           account.IsActive,
		LoginCount:         account.LoginCount,
		NeedsPasswordReset: account.NeedsPasswordReset(),
		CreatedAt:          account.CreatedAt,
	}
}

func roleResponse(role *domain.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Priority:    role.Priority,
		Permissions: role.Permissions,
	}
}

func productResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		SupplierID:        p.SupplierID,
		Name:              p.Name,
		Category:          p.Category,
		PricePerUnit:      p.PricePerUnit,
		Unit:              p.Unit,
		AvailableQuantity: p.AvailableQuantity,
		ImageURL:          p.ImageURL,
		Location:          p.Location,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func orderResponse(o *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            o.ID,
		VendorID:      o.VendorID,
		SupplierID:    o.SupplierID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Location:      o.Location,
		OrderDate:     o.OrderDate,
		UpdatedAt:     o.UpdatedAt,
	}
}

func reviewResponse(r *domain.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:         r.ID,
		VendorID:   r.VendorID,
		SupplierID: r.SupplierID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
