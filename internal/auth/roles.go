package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RequireAnyRole admits any authenticated account holding one of the seeded roles.
func (g *Guard) RequireAnyRole() fiber.Handler {
	return g.Authorize(domain.RoleAdmin, domain.RoleSupplier, domain.RoleVendor)
}

// RequireAdmin admits admins only.
func (g *Guard) RequireAdmin() fiber.Handler {
	return g.Authorize(domain.RoleAdmin)
}

// RequireSupplier admits suppliers only.
func (g *Guard) RequireSupplier() fiber.Handler {
	return g.Authorize(domain.RoleSupplier)
}

// RequireVendor admits vendors only.
func (g *Guard) RequireVendor() fiber.Handler {
	return g.Authorize(domain.RoleVendor)
}

// RequireAdminOrVendor admits admins and vendors.
func (g *Guard) RequireAdminOrVendor() fiber.Handler {
	return g.Authorize(domain.RoleAdmin, domain.RoleVendor)
}

// RequireAdminOrSupplier admits admins and suppliers.
func (g *Guard) RequireAdminOrSupplier() fiber.Handler {
	return g.Authorize(domain.RoleAdmin, domain.RoleSupplier)
}
