package partner

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/config"
	"crm-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PartnerApi struct {
	controller *PartnerController
	config     *config.Config
}

func NewPartnerApi(controller *PartnerController, config *config.Config) api.Route {
	return &PartnerApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all partner routes
func (h *PartnerApi) Setup(app *fiber.App) {
	partnerGroup := app.Group("/api/partners", middleware.AuthMiddleware(h.config.SkipAuth))

	partnerGroup.Get("/counterparties", h.controller.ListCounterparties)
	partnerGroup.Get("/counterparties/:id", h.controller.GetCounterparty)
	partnerGroup.Get("/organizations", h.controller.ListOrganizations)
	partnerGroup.Get("/employees", h.controller.ListEmployees)
	partnerGroup.Get("/projects", h.controller.ListProjects)
	partnerGroup.Get("/contracts", h.controller.ListContracts)
}
