package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/internal/middleware"
	"workspace-service/internal/pages"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

func ListPages(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	result, err := pageService().ListActive()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pages": result})
}

func ListArchivedPages(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	result, err := pageService().ListArchived(middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pages": result})
}

// ViewPage returns the page with its blocks in display order, stamping
// the view on it.
func ViewPage(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	page, err := pageService().View(id, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page})
}

func CreatePage(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	page, err := pageService().Create(req.Title, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("page", "create")
	return c.JSON(http.StatusCreated, echo.Map{"page": page})
}

// QuickCapture turns one line of text into a page holding a single text
// block, titled from the text itself.
func QuickCapture(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	page, err := pageService().QuickCapture(req.Text, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("page", "quick_capture")
	return c.JSON(http.StatusCreated, echo.Map{"page": page})
}

// SavePage accepts the full replacement block list for a page and
// reconciles it against the stored blocks in one transaction.
func SavePage(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req struct {
		Title  string             `json:"title"`
		Blocks []pages.BlockInput `json:"blocks"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	start := time.Now()
	svc := pageService()
	if err := svc.Save(id, req.Title, req.Blocks, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.PageSaveCounter.Inc()
	prometheus.PageSaveDuration.Observe(time.Since(start).Seconds())

	page, err := svc.Get(id, middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	logger.FromContext(c).Info("Page saved",
		zap.Uint("page_id", id),
		zap.Int("blocks", len(req.Blocks)))
	return c.JSON(http.StatusOK, echo.Map{"page": page})
}

func ArchivePage(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := pageService().Archive(id, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("page", "archive")
	return c.JSON(http.StatusOK, echo.Map{"message": "page archived"})
}

func RestorePage(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := pageService().Restore(id, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("page", "restore")
	return c.JSON(http.StatusOK, echo.Map{"message": "page restored"})
}
