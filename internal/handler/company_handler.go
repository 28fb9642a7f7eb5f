package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workspace-service/internal/entity"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/prometheus"
)

func ListCompanies(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	actor := middleware.Actor(c)

	q, view, err := resolveListQuery(c, svc, actor, "companies")
	if err != nil {
		return writeError(c, err)
	}
	companies, err := svc.ListCompanies(q)
	if err != nil {
		return writeError(c, err)
	}

	resp := echo.Map{"companies": companies, "statuses": model.CompanyStatuses}
	if view != nil {
		resp["view"] = view
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCompany returns one company with its projects for the detail screen.
func GetCompany(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	svc := entityService()
	company, err := svc.GetCompany(id)
	if err != nil {
		return writeError(c, err)
	}
	projects, err := svc.ListProjects(entity.ListQuery{CompanyID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"company": company, "projects": projects})
}

func CreateCompany(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	var in entity.CompanyInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	company, err := entityService().CreateCompany(in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("company", "create")
	return c.JSON(http.StatusCreated, echo.Map{"company": company})
}

func UpdateCompany(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in entity.CompanyInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	company, err := entityService().UpdateCompany(id, in, middleware.Actor(c), c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("company", "update")
	return c.JSON(http.StatusOK, echo.Map{"company": company})
}

func DeleteCompany(c echo.Context) error {
	if err := requireWorkspaceReady(); err != nil {
		return writeError(c, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := entityService().DeleteCompany(id, middleware.Actor(c), c.RealIP()); err != nil {
		return writeError(c, err)
	}
	prometheus.RecordEntityOperation("company", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted"})
}
