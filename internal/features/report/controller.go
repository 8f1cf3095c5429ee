package report

import (
	"strconv"

	"crm-backend/internal/features/catalog"
	"crm-backend/internal/features/inventory"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{
		Service: service,
	}
}

// ExportProducts godoc
func (ctrl *ReportController) ExportProducts(c *fiber.Ctx) error {
	filter := catalog.ProductFilter{
		Search: c.Query("search"),
	}
	if folder := c.Query("folder_id"); folder != "" {
		id, err := strconv.ParseInt(folder, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid folder_id",
			})
		}
		filter.FolderID = &id
	}

	data, filename, err := ctrl.Service.ExportProducts(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ExportStock godoc
func (ctrl *ReportController) ExportStock(c *fiber.Ctx) error {
	filter := inventory.StockFilter{}
	if store := c.Query("store_id"); store != "" {
		id, err := strconv.ParseInt(store, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid store_id",
			})
		}
		filter.StoreID = &id
	}

	data, filename, err := ctrl.Service.ExportStock(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
