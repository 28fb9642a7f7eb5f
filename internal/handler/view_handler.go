package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workspace-service/internal/middleware"
)

// Saved view management. The key route parameter names the entity list
// screen a view belongs to (tasks, projects, companies).

func ListViews(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	views, err := entityService().ListViews(middleware.Actor(c), c.Param("key"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"views": views})
}

// SaveView captures the caller's current list parameters under a name.
// Saving an existing name overwrites that view's snapshot.
func SaveView(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Name      string `json:"name"`
		IsDefault bool   `json:"is_default"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	view, err := entityService().SaveView(middleware.Actor(c), c.Param("key"), req.Name, parseListQuery(c), req.IsDefault)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"view": view})
}

func DeleteView(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().DeleteView(middleware.Actor(c), c.Param("key"), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "view deleted"})
}

func SetDefaultView(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().SetDefaultView(middleware.Actor(c), c.Param("key"), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "default view set"})
}
