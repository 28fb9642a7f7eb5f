package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workspace-service/internal/workspace"
	"workspace-service/pkg/database"
	"workspace-service/prometheus"
)

func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}

// HealthCheck reports process liveness plus store reachability. The
// workspace store being absent is a degraded state, not a failure.
func HealthCheck(c echo.Context) error {
	status := "ok"
	stores := echo.Map{}

	if sqlDB, err := database.GetCore().DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		stores["core"] = "unreachable"
	} else {
		stores["core"] = "ok"
	}

	ws := database.GetWorkspace()
	switch {
	case ws == nil:
		stores["workspace"] = "unconfigured"
	case !workspace.Ready(ws):
		stores["workspace"] = "uninitialized"
	default:
		stores["workspace"] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{"status": status, "stores": stores})
}
