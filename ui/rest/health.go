package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AzielCF/az-digest/core/config"
	"github.com/AzielCF/az-digest/pkg/utils"
)

type Health struct{}

func InitRestHealth(app fiber.Router) Health {
	handler := Health{}

	app.Get("/api/health", handler.GetStatus)
	app.Get("/api/health/settings", handler.GetSettings)

	return handler
}

// GetSettings exposes the effective runtime configuration for operators.
func (h *Health) GetSettings(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Current settings",
		Results: config.GetAllSettings(),
	})
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service is up",
		Results: fiber.Map{
			"version":     config.Global.App.Version,
			"environment": config.Global.App.Environment,
		},
	})
}
