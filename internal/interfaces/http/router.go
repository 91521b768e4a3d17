package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/internal/application/auth"
	"github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/application/dashboard"
	"github.com/jhoicas/em-inventario/internal/application/document"
	"github.com/jhoicas/em-inventario/internal/application/requisition"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	CatalogUC      *catalog.UseCase
	Registry       *catalog.Registry
	LedgerUC       *requisition.LedgerUseCase
	DashboardUC    *dashboard.UseCase
	DocumentUC     *document.UseCase
	CatalogChanges CatalogSubscriber
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", WithLogger(deps.Log))

	// Auth: login público, registro solo admin
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), RequireRole(entity.RoleAdmin), authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	canDelete := RequireRole(entity.RoleAdmin, entity.RoleStorekeeper)

	catalogHandler := NewCatalogHandler(deps.CatalogUC, deps.Registry)
	cat := protected.Group("/catalog")
	cat.Get("/", catalogHandler.Categories)
	cat.Get("/:category", catalogHandler.List)
	cat.Post("/:category", catalogHandler.Create)
	cat.Get("/:category/:id", catalogHandler.Get)
	cat.Put("/:category/:id", catalogHandler.Update)
	cat.Delete("/:category/:id", canDelete, catalogHandler.Delete)

	reqHandler := NewRequisitionHandler(deps.LedgerUC)
	docHandler := NewDocumentHandler(deps.DocumentUC)
	reqs := protected.Group("/requisitions")
	reqs.Get("/", reqHandler.List)
	reqs.Post("/", reqHandler.Create)
	reqs.Get("/:id", reqHandler.Get)
	reqs.Patch("/:id", reqHandler.Update)
	reqs.Delete("/:id", canDelete, reqHandler.Delete)
	reqs.Get("/:id/documents/:kind.:format", docHandler.FromRequisition)

	protected.Post("/documents/:kind.:format", docHandler.FromRequest)

	protected.Get("/dashboard", NewDashboardHandler(deps.DashboardUC).GetSummary)

	eventsHandler := NewEventsHandler(deps.LedgerUC, deps.CatalogChanges, deps.Log)
	protected.Get("/events", eventsHandler.Stream)
}
