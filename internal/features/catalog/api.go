package catalog

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CatalogApi struct {
	controller *CatalogController
	config     *config.Config
}

func NewCatalogApi(controller *CatalogController, config *config.Config) api.Route {
	return &CatalogApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all catalog routes
func (h *CatalogApi) Setup(app *fiber.App) {
	catalogGroup := app.Group("/api/catalog", middleware.AuthMiddleware(h.config.SkipAuth))

	catalogGroup.Get("/products", h.controller.ListProducts)
	catalogGroup.Get("/products/:id", h.controller.GetProduct)
	catalogGroup.Get("/folders", h.controller.ListFolders)
	catalogGroup.Get("/units", h.controller.ListUnits)
	catalogGroup.Get("/services", h.controller.ListServices)
}
