package system

import (
	"crm-backend/internal/common/api"
	"crm-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	db *database.PostgresDB
}

func NewHealthApi(db *database.PostgresDB) api.Route {
	return &HealthApi{db: db}
}

// Setup registers the unauthenticated health endpoint.
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := h.db.DB.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
}
