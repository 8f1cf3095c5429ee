package inventory

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InventoryApi struct {
	controller *InventoryController
	config     *config.Config
}

func NewInventoryApi(controller *InventoryController, config *config.Config) api.Route {
	return &InventoryApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all inventory routes
func (h *InventoryApi) Setup(app *fiber.App) {
	inventoryGroup := app.Group("/api/inventory", middleware.AuthMiddleware(h.config.SkipAuth))

	inventoryGroup.Get("/stores", h.controller.ListStores)
	inventoryGroup.Get("/stock", h.controller.ListStock)
}
