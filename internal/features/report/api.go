package report

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller *ReportController
	config     *config.Config
}

func NewReportApi(controller *ReportController, config *config.Config) api.Route {
	return &ReportApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all report routes
func (h *ReportApi) Setup(app *fiber.App) {
	reportGroup := app.Group("/api/reports", middleware.AuthMiddleware(h.config.SkipAuth))

	reportGroup.Get("/products/export", h.controller.ExportProducts)
	reportGroup.Get("/stock/export", h.controller.ExportStock)
}
