package inventory

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type InventoryController struct {
	Service InventoryService
}

func NewInventoryController(service InventoryService) *InventoryController {
	return &InventoryController{
		Service: service,
	}
}

// ListStores godoc
func (ctrl *InventoryController) ListStores(c *fiber.Ctx) error {
	stores, err := ctrl.Service.ListStores(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": stores,
	})
}

// ListStock godoc
func (ctrl *InventoryController) ListStock(c *fiber.Ctx) error {
	filter := StockFilter{
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}

	if product := c.Query("product_id"); product != "" {
		id, err := strconv.ParseInt(product, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid product_id",
			})
		}
		filter.ProductID = &id
	}
	if store := c.Query("store_id"); store != "" {
		id, err := strconv.ParseInt(store, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid store_id",
			})
		}
		filter.StoreID = &id
	}

	levels, total, err := ctrl.Service.ListStock(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  levels,
		"total": total,
	})
}
