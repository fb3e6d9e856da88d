package service

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/theapemachine/a2a-calculator/pkg/metrics"
)

func handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func metricsHandler() http.Handler {
	return metrics.Handler()
}
