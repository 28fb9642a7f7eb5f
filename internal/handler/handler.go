// Package handler is the HTTP boundary: it parses requests, hands the
// acting identity and source address to the engines, and maps the error
// taxonomy to status codes. No business rules live here.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/internal/apperr"
	"workspace-service/internal/entity"
	"workspace-service/internal/model"
	"workspace-service/internal/pages"
	"workspace-service/internal/workspace"
	"workspace-service/pkg/config"
	"workspace-service/pkg/database"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

var (
	cfg     *config.Config
	coreURL string
)

// Init stores the loaded configuration and the resolved core store URL
// for handlers that need them (the admin storage screen).
func Init(c *config.Config, resolvedCoreURL string) {
	cfg = c
	coreURL = resolvedCoreURL
}

func entityService() *entity.Service {
	return entity.NewService(database.GetWorkspace(), database.GetCore())
}

func pageService() *pages.Service {
	return pages.NewService(database.GetWorkspace(), database.GetCore())
}

// requireWorkspaceReady gates every workspace-bound operation: configured
// but uninitialized (or entirely unconfigured) storage degrades to a
// "setup required" response instead of an unhandled failure.
func requireWorkspaceReady() error {
	if !workspace.Ready(database.GetWorkspace()) {
		return apperr.ErrWorkspaceNotReady
	}
	return nil
}

func idParam(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}

func parseListQuery(c echo.Context) entity.ListQuery {
	return entity.ListQuery{
		Q:               c.QueryParam("q"),
		Status:          c.QueryParam("status"),
		Sort:            c.QueryParam("sort"),
		Dir:             c.QueryParam("dir"),
		IncludeArchived: c.QueryParam("include_archived"),
		ProjectID:       c.QueryParam("project_id"),
		CompanyID:       c.QueryParam("company_id"),
	}
}

// resolveListQuery decides which filter set a list request runs with.
// An explicit view_id wins; otherwise a request with no filter parameters
// falls back to the caller's default saved view unless use_default=0.
// The returned view is non-nil when a saved view supplied the query.
func resolveListQuery(c echo.Context, svc *entity.Service, actor *model.User, key string) (entity.ListQuery, *model.SavedView, error) {
	if raw := c.QueryParam("view_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return entity.ListQuery{}, nil, apperr.ErrNotFound
		}
		view, err := svc.GetView(actor, uint(id))
		if err != nil {
			return entity.ListQuery{}, nil, err
		}
		q, err := entity.ApplyView(view)
		return q, view, err
	}

	q := parseListQuery(c)
	if q != (entity.ListQuery{}) || c.QueryParam("use_default") == "0" {
		return q, nil, nil
	}
	view, err := svc.DefaultView(actor, key)
	if err != nil || view == nil {
		return q, nil, err
	}
	applied, err := entity.ApplyView(view)
	return applied, view, err
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	var ve *apperr.ValidationError
	var ce *apperr.ConfigError
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		prometheus.RecordAuthError("unauthorized")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	case errors.Is(err, apperr.ErrForbidden):
		prometheus.RecordAuthError("forbidden")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, apperr.ErrWorkspaceNotReady):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "workspace setup required"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
	case errors.As(err, &ce):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ce.Reason})
	default:
		logger.FromContext(c).Error("Unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
