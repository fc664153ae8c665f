package handlers

import (
	"time"

	"bastion/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// Health handles GET /health.
func Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthStatus{
		Status:    "healthy",
		Service:   "bastion-api",
		Version:   ServiceVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
