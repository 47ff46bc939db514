package handler

import (
	"eie-registry/internal/middleware"
	"eie-registry/internal/model"
	"eie-registry/internal/service"
	"eie-registry/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Permission  *PermissionHandler
	Consent     *ConsentHandler
	Institution *InstitutionHandler
	Product     *ProductHandler
	ProductFile *ProductFileHandler
	Stats       *StatsHandler
	Health      *HealthHandler
}

type RouteConfig struct {
	BasePath       string
	LoginURL       string
	AuthService    service.AuthService
	ConsentService service.ConsentService
	Hub            *ws.Hub
	Logger         zerolog.Logger
}

func SetupRoutes(app *fiber.App, h Handlers, cfg RouteConfig) {
	requireAuth := middleware.RequireAuth(cfg.AuthService, cfg.LoginURL)

	app.Get("/health", h.Health.Health)

	api := app.Group(cfg.BasePath + "/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	// ============ AUTHENTICATED, BEFORE CONSENT ============
	session := api.Group("", requireAuth)
	session.Get("/auth/me", h.Auth.Me)
	session.Post("/auth/logout", h.Auth.Logout)
	session.Get("/permissions", h.Permission.GetPermissions)
	session.Get("/consent", h.Consent.GetConsent)
	session.Put("/consent", h.Consent.AcceptConsent)

	// ============ REGISTRY ROUTES ============
	// registered after the session routes so /auth/me and /consent stay
	// reachable before the terms are accepted
	protected := session.Group("", middleware.RequireConsent(cfg.ConsentService, cfg.Logger))

	protected.Get("/roles", h.Permission.GetRoles)
	protected.Get("/privileges", h.Permission.GetPrivileges)

	protected.Get("/institutions", middleware.RequirePrivilege(model.PrivInstitutionView), h.Institution.GetInstitutions)
	protected.Get("/institutions/:id", h.Institution.GetInstitution)

	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), h.User.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), h.User.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), h.User.CreateUser)

	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), h.Product.GetProducts)
	protected.Post("/products/status/:action",
		middleware.RequireAnyPrivilege(model.PrivProductReview, model.PrivProductApprove, model.PrivProductRestore),
		h.Product.ChangeStatus)
	protected.Get("/products/:gtin", middleware.RequirePrivilege(model.PrivProductView), h.Product.GetProduct)
	protected.Get("/products/:gtin/history", middleware.RequirePrivilege(model.PrivProductView), h.Product.GetHistory)

	protected.Post("/product-files/verify", middleware.RequirePrivilege(model.PrivUploadCreate), h.ProductFile.Verify)
	protected.Post("/product-files", middleware.RequirePrivilege(model.PrivUploadCreate), h.ProductFile.Submit)
	protected.Get("/product-files", middleware.RequirePrivilege(model.PrivUploadView), h.ProductFile.GetProductFiles)
	protected.Get("/product-files/batch-list",
		middleware.RequireAnyPrivilege(model.PrivUploadView, model.PrivProductView),
		h.ProductFile.GetBatchList)
	protected.Get("/product-files/:id", middleware.RequirePrivilege(model.PrivUploadView), h.ProductFile.GetProductFile)
	protected.Get("/product-files/:id/report", middleware.RequirePrivilege(model.PrivUploadView), h.ProductFile.GetReport)

	protected.Get("/stats/products", middleware.RequirePrivilege(model.PrivStatsView), h.Stats.GetProductStats)
	protected.Get("/stats/status-movement", middleware.RequirePrivilege(model.PrivStatsView), h.Stats.GetStatusMovement)

	// WebSocket Route
	if cfg.Hub != nil {
		app.Use(cfg.BasePath+"/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}, requireAuth)
		app.Get(cfg.BasePath+"/ws", websocket.New(cfg.Hub.Handler))
	}
}
