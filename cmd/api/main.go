package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/em-inventario/internal/application/auth"
	appcatalog "github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/application/dashboard"
	"github.com/jhoicas/em-inventario/internal/application/document"
	"github.com/jhoicas/em-inventario/internal/application/requisition"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
	"github.com/jhoicas/em-inventario/internal/infrastructure/localstore"
	"github.com/jhoicas/em-inventario/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/em-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/em-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/em-inventario/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/em-inventario/internal/interfaces/http"
	"github.com/jhoicas/em-inventario/pkg/config"
	"github.com/jhoicas/em-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// application_name de PostgreSQL: el listener descarta los NOTIFY de esta instancia
	instanceID := fmt.Sprintf("%s-%s", cfg.App.Name, uuid.New().String()[:8])

	log := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    cfg.App.LogLevel,
		App:      cfg.App.Name,
		Instance: instanceID,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	policy, err := requisition.ParsePolicy(cfg.Reconcile.Policy)
	if err != nil {
		log.Fatal().Err(err).Msg("RECONCILE_POLICY")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Buses de cambio: se construyen aquí y se inyectan; se cierran al apagar.
	catalogChanges := events.NewBus[events.Signal]("catalog", log.Component("bus"))
	ledgerChanges := events.NewBus[entity.RequisitionChange]("ledger", log.Component("bus"))
	defer catalogChanges.Close()
	defer ledgerChanges.Close()

	// Categorías locales: documento JSON por categoría en SQLite.
	localDB, err := localstore.Open(cfg.Storage.LocalStorePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.LocalStorePath).Msg("abrir almacenamiento local")
	}
	defer closeDB(localDB)
	kv := localstore.NewKV(localDB)

	registry := appcatalog.NewRegistry()
	for _, c := range entity.Categories() {
		if c == entity.CategorySpareParts {
			continue
		}
		registry.Register(c, localstore.NewCatalogStore(kv, c))
	}

	var (
		userRepo   repository.UserRepository
		ledgerRepo repository.RequisitionRepository
		pool       *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err = postgres.NewPool(ctx, cfg.DB, instanceID)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema PostgreSQL")
		}
		registry.Register(entity.CategorySpareParts, postgres.NewCatalogRepository(pool, entity.CategorySpareParts))
		userRepo = postgres.NewUserRepository(pool)
		ledgerRepo = postgres.NewRequisitionRepository(pool)
	default:
		log.Warn().Msg("STORAGE_DRIVER=memory: repuestos, libro y usuarios no sobreviven al reinicio")
		registry.Register(entity.CategorySpareParts, memory.NewCatalogStore(entity.CategorySpareParts))
		userRepo = memory.NewUserRepository()
		ledgerRepo = memory.NewRequisitionRepository()
	}

	reconciler := requisition.NewReconciler(registry, catalogChanges, log.Component("reconciler"))
	ledgerUC := requisition.NewLedgerUseCase(ledgerRepo, reconciler, ledgerChanges, requisition.Options{
		Policy:       policy,
		EnforceStock: cfg.Reconcile.EnforceStock,
	}, log.Component("ledger"))
	catalogUC := appcatalog.NewUseCase(registry, catalogChanges, log.Component("catalog"))
	dashboardUC := dashboard.NewUseCase(registry, ledgerRepo, log.Component("dashboard"))
	documentUC := document.NewUseCase(ledgerUC, cfg.Docs.Organization, map[document.Format]document.Renderer{
		document.FormatXLS:  spreadsheet.NewHTMLRenderer(),
		document.FormatXLSX: spreadsheet.NewXLSXRenderer(),
		document.FormatPDF:  infrapdf.NewMarotoRenderer(),
	}, log.Component("documents"))
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	if cfg.Admin.Email != "" {
		if err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
	}

	ledgerUC.Subscribe(func(_ context.Context, ch entity.RequisitionChange) {
		log.Debug().Str("op", ch.Op).Str("requisition", ch.RequisitionID).Msg("cambio en el libro")
	})

	if pool != nil {
		listener := postgres.NewListener(pool, instanceID, ledgerChanges, catalogChanges, log.Component("listener"))
		go listener.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
		// sin WriteTimeout: /api/events mantiene la conexión abierta
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "E&M Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "instance": instanceID})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		CatalogUC:      catalogUC,
		Registry:       registry,
		LedgerUC:       ledgerUC,
		DashboardUC:    dashboardUC,
		DocumentUC:     documentUC,
		CatalogChanges: catalogChanges,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}
