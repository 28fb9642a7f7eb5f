package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workspace-service/internal/entity"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/prometheus"
)

func ListProjects(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	actor := middleware.Actor(c)

	q, view, err := resolveListQuery(c, svc, actor, "projects")
	if err != nil {
		return writeError(c, err)
	}
	projects, err := svc.ListProjects(q)
	if err != nil {
		return writeError(c, err)
	}

	resp := echo.Map{"projects": projects, "statuses": model.ProjectStatuses}
	if view != nil {
		resp["view"] = view
	}
	return c.JSON(http.StatusOK, resp)
}

// GetProject returns one project with its non-archived tasks, so the
// detail screen can render the embedded task list and quick-add form.
func GetProject(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	project, err := svc.GetProject(id)
	if err != nil {
		return writeError(c, err)
	}
	tasks, err := svc.ListTasks(entity.ListQuery{ProjectID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"project": project, "tasks": tasks})
}

func CreateProject(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var in entity.ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	project, err := entityService().CreateProject(in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("project", "create")
	return c.JSON(http.StatusCreated, echo.Map{"project": project})
}

func UpdateProject(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in entity.ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	project, err := entityService().UpdateProject(id, in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("project", "update")
	return c.JSON(http.StatusOK, echo.Map{"project": project})
}

func DeleteProject(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().DeleteProject(id, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("project", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "project deleted"})
}
