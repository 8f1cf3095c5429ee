package partner

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type PartnerController struct {
	Service PartnerService
}

func NewPartnerController(service PartnerService) *PartnerController {
	return &PartnerController{
		Service: service,
	}
}

// ListCounterparties godoc
func (ctrl *PartnerController) ListCounterparties(c *fiber.Ctx) error {
	filter := CounterpartyFilter{
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if archived := c.Query("archived"); archived != "" {
		val := archived == "true"
		filter.Archived = &val
	}

	parties, total, err := ctrl.Service.ListCounterparties(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  parties,
		"total": total,
	})
}

// GetCounterparty godoc
func (ctrl *PartnerController) GetCounterparty(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid counterparty id",
		})
	}

	party, err := ctrl.Service.GetCounterparty(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Counterparty not found",
		})
	}

	return c.JSON(party)
}

// ListOrganizations godoc
func (ctrl *PartnerController) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := ctrl.Service.ListOrganizations(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"data": orgs})
}

// ListEmployees godoc
func (ctrl *PartnerController) ListEmployees(c *fiber.Ctx) error {
	employees, err := ctrl.Service.ListEmployees(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"data": employees})
}

// ListProjects godoc
func (ctrl *PartnerController) ListProjects(c *fiber.Ctx) error {
	projects, err := ctrl.Service.ListProjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"data": projects})
}

// ListContracts godoc
func (ctrl *PartnerController) ListContracts(c *fiber.Ctx) error {
	var counterpartyID *int64
	if val := c.Query("counterparty_id"); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid counterparty_id",
			})
		}
		counterpartyID = &id
	}

	contracts, err := ctrl.Service.ListContracts(c.Context(), counterpartyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"data": contracts})
}
