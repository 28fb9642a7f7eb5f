package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workspace-service/internal/audit"
	"workspace-service/internal/middleware"
	"workspace-service/internal/workspace"
	"workspace-service/pkg/database"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

// Admin storage screen. Saving a location only persists it; making the
// process use a newly saved location requires either the explicit
// initialize action (for a store reachable right now) or a restart.

func StorageStatus(c echo.Context) error {
	ws := database.GetWorkspace()
	configured := workspace.Configured(ws)
	ready := workspace.Ready(ws)

	url := workspace.CleanURL(os.Getenv("WORKSPACE_DATABASE_URL"))
	envOverride := url != ""
	if url == "" {
		stored, err := database.GetSetting(database.GetCore(), workspace.SettingKey)
		if err != nil {
			return writeError(c, err)
		}
		url = stored
	}

	resp := echo.Map{
		"configured":   configured,
		"ready":        ready,
		"split":        database.WorkspaceSplit(),
		"url":          url,
		"env_override": envOverride,
		"default_url":  workspace.DefaultWorkspaceURL(cfg.Server.DataDir),
	}
	if url != "" {
		resp["description"] = workspace.DescribeURL(url)
	}
	return c.JSON(http.StatusOK, resp)
}

func SaveStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	var req struct {
		Mode string `json:"mode"`
		URL  string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var raw string
	switch req.Mode {
	case "default":
		raw = workspace.DefaultWorkspaceURL(cfg.Server.DataDir)
	case "custom":
		raw = req.URL
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mode must be default or custom"})
	}

	normalized, err := workspace.ValidateURL(raw, cfg.Server.DataDir)
	if err != nil {
		return writeError(c, err)
	}

	err = database.GetCore().Transaction(func(tx *gorm.DB) error {
		if err := database.SetSetting(tx, workspace.SettingKey, normalized); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionWorkspaceDBUpdated,
			EntityType: "AppSetting",
			Metadata:   map[string]any{"url": normalized, "mode": req.Mode},
			ActorID:    &actor.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Workspace database location saved", zap.String("url", normalized))
	return c.JSON(http.StatusOK, echo.Map{
		"url":     normalized,
		"message": "Location saved. Initialize the database or restart the service to apply it.",
	})
}

// InitializeStorage creates the workspace schema at the currently
// resolved location and swaps the live handle to it. Safe to re-run:
// AutoMigrate only adds what is missing.
func InitializeStorage(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	coreStoreURL := coreURL
	wsURL := workspace.ResolveWorkspaceURL(coreStoreURL, os.Getenv("WORKSPACE_DATABASE_URL"))
	if wsURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no workspace database location is configured"})
	}

	// Open the currently resolved location rather than trusting whatever
	// handle the process started with; the admin may have just saved a
	// new URL.
	var db *gorm.DB
	if wsURL == workspace.CleanURL(coreStoreURL) {
		db = database.GetCore()
	} else {
		opened, err := database.Open(wsURL, cfg.DB.LogLevel)
		if err != nil {
			log.Error("Failed to open workspace store", zap.String("url", wsURL), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot connect to the configured database"})
		}
		db = opened
	}

	if err := database.MigrateWorkspace(db); err != nil {
		log.Error("Workspace schema migration failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database initialization failed"})
	}
	database.SetWorkspace(db)
	prometheus.SetWorkspaceState(true, workspace.Ready(db))

	err := database.GetCore().Transaction(func(tx *gorm.DB) error {
		return audit.Record(tx, audit.Entry{
			Action:     audit.ActionWorkspaceDBInitialized,
			EntityType: "AppSetting",
			Metadata:   map[string]any{"url": wsURL},
			ActorID:    &actor.ID,
			IP:         c.RealIP(),
		})
	})
	if err != nil {
		return writeError(c, err)
	}

	log.Info("Workspace database initialized", zap.String("url", wsURL))
	return c.JSON(http.StatusOK, echo.Map{
		"url":     wsURL,
		"ready":   true,
		"message": "Workspace database initialized.",
	})
}
