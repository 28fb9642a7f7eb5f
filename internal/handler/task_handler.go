package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workspace-service/internal/entity"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/prometheus"
)

func ListTasks(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	actor := middleware.Actor(c)

	q, view, err := resolveListQuery(c, svc, actor, "tasks")
	if err != nil {
		return writeError(c, err)
	}
	tasks, err := svc.ListTasks(q)
	if err != nil {
		return writeError(c, err)
	}

	resp := echo.Map{"tasks": tasks, "statuses": model.TaskStatuses}
	if view != nil {
		resp["view"] = view
	}
	return c.JSON(http.StatusOK, resp)
}

func GetTask(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	task, err := svc.GetTask(id)
	if err != nil {
		return writeError(c, err)
	}
	pageIDs, err := svc.LinkedPageIDs(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task, "linked_page_ids": pageIDs})
}

func CreateTask(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var in entity.TaskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	in.Source = c.QueryParam("source")

	task, err := entityService().CreateTask(in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("task", "create")
	return c.JSON(http.StatusCreated, echo.Map{"task": task})
}

func UpdateTask(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in entity.TaskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	task, err := entityService().UpdateTask(id, in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("task", "update")
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func DeleteTask(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().DeleteTask(id, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("task", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "task deleted"})
}

func LinkTaskPage(c echo.Context) error {
	return setTaskPageLink(c, true)
}

func UnlinkTaskPage(c echo.Context) error {
	return setTaskPageLink(c, false)
}

func setTaskPageLink(c echo.Context, link bool) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	taskID, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	pageID, err := idParam(c, "page_id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().LinkTaskPage(taskID, pageID, link, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	if link {
		return c.JSON(http.StatusOK, echo.Map{"message": "page linked"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "page unlinked"})
}
