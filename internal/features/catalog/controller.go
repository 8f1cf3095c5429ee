package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type CatalogController struct {
	Service CatalogService
}

func NewCatalogController(service CatalogService) *CatalogController {
	return &CatalogController{
		Service: service,
	}
}

// ListProducts godoc
func (ctrl *CatalogController) ListProducts(c *fiber.Ctx) error {
	filter := ProductFilter{
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
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
	if archived := c.Query("archived"); archived != "" {
		val := archived == "true"
		filter.Archived = &val
	}

	products, total, err := ctrl.Service.ListProducts(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  products,
		"total": total,
	})
}

// GetProduct godoc
func (ctrl *CatalogController) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product id",
		})
	}

	product, err := ctrl.Service.GetProduct(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(product)
}

// ListFolders godoc
func (ctrl *CatalogController) ListFolders(c *fiber.Ctx) error {
	folders, err := ctrl.Service.ListFolders(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": folders,
	})
}

// ListUnits godoc
func (ctrl *CatalogController) ListUnits(c *fiber.Ctx) error {
	units, err := ctrl.Service.ListUnits(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": units,
	})
}

// ListServices godoc
func (ctrl *CatalogController) ListServices(c *fiber.Ctx) error {
	var archived *bool
	if val := c.Query("archived"); val != "" {
		b := val == "true"
		archived = &b
	}

	services, err := ctrl.Service.ListServices(c.Context(), archived)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": services,
	})
}
