package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

// APIPrefix is the base path of every versioned route.
const APIPrefix = "/api/v1"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Products *handlers.ProductsHandler
	Orders   *handlers.OrdersHandler
	Reviews  *handlers.ReviewsHandler
	Metrics  *handlers.MetricsHandler
	Guard    *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	guard := cfg.Guard

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group(APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/signin", cfg.Auth.Signin)
	authGroup.Post("/refresh", guard.RequireAnyRole(), cfg.Auth.Refresh)
	authGroup.Post("/logout", guard.RequireAnyRole(), cfg.Auth.Logout)
	authGroup.Get("/profile", guard.RequireAnyRole(), cfg.Auth.Profile)
	authGroup.Put("/profile", guard.RequireAnyRole(), cfg.Auth.UpdateProfile)
	authGroup.Post("/password/change", guard.Authenticate(domain.RoleAdmin, domain.RoleSupplier, domain.RoleVendor), cfg.Auth.ChangePassword)
	authGroup.Get("/users", guard.RequireAdmin(), cfg.Auth.ListUsers)
	authGroup.Patch("/users/:id/active", guard.RequireAdmin(), cfg.Auth.SetUserActive)
	authGroup.Get("/roles", guard.RequireAdmin(), cfg.Auth.ListRoles)

	products := api.Group("/product")
	products.Get("/", guard.RequireAnyRole(), cfg.Products.List)
	products.Get("/mine", guard.RequireSupplier(), cfg.Products.ListMine)
	products.Get("/:id", guard.RequireAnyRole(), cfg.Products.Get)
	products.Post("/", guard.RequireSupplier(), guard.RequirePermission(domain.PermissionManageProducts), cfg.Products.Create)
	products.Put("/:id", guard.RequireAdminOrSupplier(), cfg.Products.Update)
	products.Delete("/:id", guard.RequireAdminOrSupplier(), cfg.Products.Delete)

	booking := api.Group("/booking")
	booking.Post("/", guard.RequireVendor(), guard.RequirePermission(domain.PermissionOrder), cfg.Orders.Book)
	booking.Get("/mine", guard.RequireVendor(), cfg.Orders.ListMine)
	booking.Get("/supplier", guard.RequireSupplier(), cfg.Orders.ListReceived)
	booking.Get("/:id", guard.RequireAnyRole(), cfg.Orders.Get)
	booking.Put("/:id/status", guard.RequireAdminOrSupplier(), cfg.Orders.UpdateStatus)

	reviews := api.Group("/review")
	reviews.Post("/", guard.RequireVendor(), cfg.Reviews.Give)
	reviews.Get("/mine", guard.RequireVendor(), cfg.Reviews.ListMine)
	reviews.Get("/supplier/:id", guard.RequireAnyRole(), cfg.Reviews.ListForSupplier)

	admin := api.Group("/admin", guard.RequireAdmin())
	admin.Get("/metrics", cfg.Metrics.Snapshot)
}
