package controller

import (
	"net/http"

	"github.com/krakosik/userhub/internal/service"
	"github.com/labstack/echo/v4"
)

type HealthController interface {
	Check(c echo.Context) error
}

type healthController struct {
	healthService service.HealthService
}

func newHealthController(healthService service.HealthService) HealthController {
	return &healthController{healthService: healthService}
}

func (h *healthController) Check(c echo.Context) error {
	result := h.healthService.Check(c.Request().Context())

	status := http.StatusOK
	if !result.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, result)
}
