package router

import (
	"strings"

	"github.com/samhans17/delivery-tracker/internal/auth"
	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/entry"
	"github.com/samhans17/delivery-tracker/internal/expense"
	"github.com/samhans17/delivery-tracker/internal/export"
	"github.com/samhans17/delivery-tracker/internal/httpx"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/metrics"
	"github.com/samhans17/delivery-tracker/internal/pricing"
	"github.com/samhans17/delivery-tracker/internal/registry"
	"github.com/samhans17/delivery-tracker/internal/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the Fiber app with every API route mounted under /api.
func New(cfg *config.Config, store auth.RevocationStore) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	allowOrigins := strings.Join(corsOrigins, ",")

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		// the session cookie is only sent to explicitly listed origins
		AllowCredentials: allowOrigins != "*",
	}))
	app.Use(logging.RequestLogger(auth.CtxUsernameKey))
	app.Use(metrics.Middleware())

	api := app.Group("/api")

	// Public
	api.Post("/login", auth.LoginHandler(cfg))
	api.Post("/logout", auth.LogoutHandler(cfg, store))
	api.Get("/auth/check", auth.CheckHandler(cfg, store))
	api.Get("/healthz", healthHandler())
	if cfg.MetricsPublic {
		api.Get("/metrics", metrics.Handler())
	}

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg, store))

	if !cfg.MetricsPublic {
		protected.Get("/metrics", metrics.Handler())
	}

	// Pricing
	protected.Get("/products/available/:routeId", pricing.ListAvailableHandler())
	protected.Post("/route-product-pricing/bulk", pricing.BulkHandler())
	protected.Get("/route-product-pricing/:routeId", pricing.RouteMatrixHandler())
	protected.Get("/route-product-pricing/:routeId/:productId", pricing.QuoteHandler())
	protected.Put("/route-product-pricing/:routeId/:productId", pricing.UpsertHandler())
	protected.Delete("/route-product-pricing/:routeId/:productId", pricing.DeleteHandler())

	// Registries
	protected.Get("/routes", registry.ListRoutesHandler())
	protected.Post("/routes", registry.CreateRouteHandler())
	protected.Get("/routes/:id", registry.GetRouteHandler())
	protected.Put("/routes/:id", registry.UpdateRouteHandler())
	protected.Delete("/routes/:id", registry.DeleteRouteHandler())

	protected.Get("/products", registry.ListProductsHandler())
	protected.Post("/products", registry.CreateProductHandler())
	protected.Get("/products/:id", registry.GetProductHandler())
	protected.Put("/products/:id", registry.UpdateProductHandler())
	protected.Delete("/products/:id", registry.DeleteProductHandler())

	protected.Get("/cars", registry.ListCarsHandler())
	protected.Post("/cars", registry.CreateCarHandler())
	protected.Get("/cars/:id", registry.GetCarHandler())
	protected.Put("/cars/:id", registry.UpdateCarHandler())
	protected.Delete("/cars/:id", registry.DeleteCarHandler())

	protected.Get("/expense-types", registry.ListExpenseTypesHandler())
	protected.Post("/expense-types", registry.CreateExpenseTypeHandler())
	protected.Get("/expense-types/:id", registry.GetExpenseTypeHandler())
	protected.Put("/expense-types/:id", registry.UpdateExpenseTypeHandler())
	protected.Delete("/expense-types/:id", registry.DeleteExpenseTypeHandler())

	// Entries
	protected.Get("/entries", entry.ListHandler())
	protected.Post("/entries", entry.CreateHandler())
	protected.Get("/entries/:id", entry.GetHandler())
	protected.Put("/entries/:id", entry.UpdateHandler())
	protected.Delete("/entries/:id", entry.DeleteHandler())

	// Expenses
	protected.Get("/expenses", expense.ListHandler())
	protected.Post("/expenses", expense.CreateHandler())
	protected.Get("/expenses/:id", expense.GetHandler())
	protected.Put("/expenses/:id", expense.UpdateHandler())
	protected.Delete("/expenses/:id", expense.DeleteHandler())

	// Stats
	protected.Get("/stats/monthly", stats.MonthlyHandler())
	protected.Get("/stats/expenses", stats.ExpensesHandler())
	protected.Get("/stats/yearly", stats.YearlyHandler())

	// Export
	protected.Get("/export/entries.xlsx", export.EntriesHandler())
	protected.Get("/export/expenses.xlsx", export.ExpensesHandler())

	return app
}

// GET /api/healthz
func healthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(database.DB); err != nil {
			logging.WithField("error", err.Error()).Error("health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
