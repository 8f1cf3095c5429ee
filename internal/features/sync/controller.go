package sync

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

// TriggerFullSync godoc
func (ctrl *SyncController) TriggerFullSync(c *fiber.Ctx) error {
	jobID, err := ctrl.Service.TriggerFullSync(c.Context())
	if err != nil {
		if errors.Is(err, errSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Full sync started",
		"job_id":  jobID,
	})
}

// TriggerIncrementalSync godoc
func (ctrl *SyncController) TriggerIncrementalSync(c *fiber.Ctx) error {
	jobID, err := ctrl.Service.TriggerIncrementalSync(c.Context())
	if err != nil {
		if errors.Is(err, errSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Incremental sync started",
		"job_id":  jobID,
	})
}

// ListJobs godoc
func (ctrl *SyncController) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	jobs, err := ctrl.Service.ListJobs(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": jobs,
	})
}

// GetJob godoc
func (ctrl *SyncController) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")

	job, err := ctrl.Service.GetJob(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sync job not found",
		})
	}

	return c.JSON(job)
}

// Status godoc
func (ctrl *SyncController) Status(c *fiber.Ctx) error {
	jobs, err := ctrl.Service.ListJobs(c.Context(), 1)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	cfg, _ := ctrl.Service.GetConfig(c.Context())

	var latest *SyncJob
	if len(jobs) > 0 {
		latest = &jobs[0]
	}
	return c.JSON(fiber.Map{
		"latest_job": latest,
		"config":     cfg,
	})
}

// TestConnection godoc
func (ctrl *SyncController) TestConnection(c *fiber.Ctx) error {
	result := ctrl.Service.TestConnection(c.Context())
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(result)
}

// GetConfig godoc
func (ctrl *SyncController) GetConfig(c *fiber.Ctx) error {
	cfg, err := ctrl.Service.GetConfig(c.Context())
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Integration is not configured",
		})
	}
	return c.JSON(cfg)
}

// UpdateConfig godoc
func (ctrl *SyncController) UpdateConfig(c *fiber.Ctx) error {
	var cfg IntegrationConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateConfig(c.Context(), &cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Integration config updated successfully",
		"data":    cfg,
	})
}
