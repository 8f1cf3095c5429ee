package main

import (
	"context"
	"fmt"
	"log"

	common_api "crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/features/catalog"
	cron_feature "crm-backend/internal/features/cron"
	"crm-backend/internal/features/inventory"
	"crm-backend/internal/features/partner"
	"crm-backend/internal/features/report"
	sync_feature "crm-backend/internal/features/sync"
	"crm-backend/internal/features/system"
	"crm-backend/internal/logger"
	"crm-backend/internal/middleware"
	"crm-backend/internal/moysklad"
	"crm-backend/pkg/utils"

	_ "crm-backend/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeSchema creates database tables and indexes on startup.
func InitializeSchema(lc fx.Lifecycle, db *database.PostgresDB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to ensure database schema: %w", err)
			}
			logger.Info("Database schema ready")
			return nil
		},
	})
}

// NewClientFactory builds MoySklad clients from the configured credentials.
func NewClientFactory(cfg *config.Config, logger *zap.Logger) sync_feature.ClientFactory {
	return func() (sync_feature.RemoteClient, error) {
		client, err := moysklad.NewClient(moysklad.ClientConfig{
			BaseURL:  cfg.MoySkladBaseURL,
			Token:    cfg.MoySkladToken,
			Username: cfg.MoySkladUsername,
			Password: cfg.MoySkladPassword,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// @title           CRM Backend API
// @version         1.0
// @description     CRM backend with MoySklad ERP synchronization.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			sync_feature.NewSyncJobRepository,
			sync_feature.NewIntegrationConfigRepository,
			catalog.NewCatalogRepository,
			inventory.NewInventoryRepository,
			partner.NewPartnerRepository,

			// Sync engine
			sync_feature.NewWriter,
			sync_feature.NewResolver,
			NewClientFactory,

			// Initialize Service
			sync_feature.NewSyncService,
			catalog.NewCatalogService,
			inventory.NewInventoryService,
			partner.NewPartnerService,
			report.NewReportService,

			// Initialize Controller
			sync_feature.NewSyncController,
			catalog.NewCatalogController,
			inventory.NewInventoryController,
			partner.NewPartnerController,
			report.NewReportController,

			// Scheduler
			cron_feature.NewScheduler,

			// Initialize API Routes
			AsRoute(sync_feature.NewSyncApi),
			AsRoute(catalog.NewCatalogApi),
			AsRoute(inventory.NewInventoryApi),
			AsRoute(partner.NewPartnerApi),
			AsRoute(report.NewReportApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			InitializeSchema,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(*cron_feature.Scheduler) {},
		),
	)

	app.Run()
}
