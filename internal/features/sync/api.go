package sync

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) api.Route {
	return &SyncApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	syncGroup := app.Group("/api/sync", middleware.AuthMiddleware(h.config.SkipAuth))

	syncGroup.Post("/full", h.controller.TriggerFullSync)
	syncGroup.Post("/incremental", h.controller.TriggerIncrementalSync)
	syncGroup.Get("/jobs", h.controller.ListJobs)
	syncGroup.Get("/jobs/:id", h.controller.GetJob)
	syncGroup.Get("/status", h.controller.Status)
	syncGroup.Post("/test-connection", h.controller.TestConnection)
	syncGroup.Get("/config", h.controller.GetConfig)
	syncGroup.Put("/config", h.controller.UpdateConfig)
}
