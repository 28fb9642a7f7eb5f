package entity

import (
	"strconv"
	"strings"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

var projectSortColumns = map[string]string{
	"name":       "project.name",
	"status":     "project.status",
	"updated_at": "project.updated_at",
}

// ProjectInput carries project fields for create and update.
type ProjectInput struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	CompanyID *uint  `json:"company_id"`
	Source    string `json:"-"`
}

// ListProjects returns projects matching q; the text filter also matches
// the parent company name through an outer join.
func (s *Service) ListProjects(q ListQuery) ([]model.Project, error) {
	tx := s.ws.Model(&model.Project{}).
		Select("project.*").
		Joins("LEFT JOIN company ON company.id = project.company_id")

	if term := strings.TrimSpace(q.Q); term != "" {
		like := likePattern(term)
		tx = tx.Where("LOWER(project.name) LIKE ? OR LOWER(company.name) LIKE ?", like, like)
	}
	if q.Status != "" {
		tx = tx.Where("project.status = ?", q.Status)
	}
	if q.CompanyID != "" {
		if id, err := strconv.ParseUint(q.CompanyID, 10, 64); err == nil {
			tx = tx.Where("project.company_id = ?", id)
		}
	}
	if !q.includeArchived() {
		tx = tx.Where("project.status <> ?", model.StatusArchived)
	}

	tx = tx.Order(orderClause(projectSortColumns, q.Sort, q.Dir, "project.updated_at"))

	var projects []model.Project
	if err := tx.Preload("Company").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject loads one project with its company.
func (s *Service) GetProject(id uint) (*model.Project, error) {
	var project model.Project
	if err := s.ws.Preload("Company").First(&project, id).Error; err != nil {
		return nil, notFoundOr(err, "load project")
	}
	return &project, nil
}

func validateProjectInput(in *ProjectInput, defaultStatus string) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validationf("project name is required")
	}
	if in.Status == "" {
		in.Status = defaultStatus
	}
	if !model.ValidProjectStatus(in.Status) {
		return apperr.Validationf("invalid project status")
	}
	return nil
}

// CreateProject creates a project for actor and logs the creation.
func (s *Service) CreateProject(in ProjectInput, actor *model.User, ip string) (*model.Project, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	if err := validateProjectInput(&in, "idea"); err != nil {
		return nil, err
	}

	project := model.Project{
		Name:            in.Name,
		Status:          in.Status,
		CompanyID:       in.CompanyID,
		CreatedByUserID: actor.ID,
	}
	err := s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Create(&project).Error; err != nil {
			return err
		}
		var meta map[string]any
		if in.Source != "" {
			meta = map[string]any{"source": in.Source}
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionProjectCreated,
			EntityType: "Project",
			EntityID:   audit.EntityID(project.ID),
			Metadata:   meta,
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies in to the project after the ownership check.
func (s *Service) UpdateProject(id uint, in ProjectInput, actor *model.User, ip string) (*model.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireEdit(actor, project); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = project.Status
	}
	if err := validateProjectInput(&in, project.Status); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Name != project.Name {
		changes["name"] = map[string]any{"from": project.Name, "to": in.Name}
	}
	if in.Status != project.Status {
		changes["status"] = map[string]any{"from": project.Status, "to": in.Status}
	}
	if !uintPtrEqual(in.CompanyID, project.CompanyID) {
		changes["company_id"] = map[string]any{"from": project.CompanyID, "to": in.CompanyID}
	}

	err = s.inTransaction(func(ws, core *gorm.DB) error {
		updates := map[string]any{
			"name":       in.Name,
			"status":     in.Status,
			"company_id": in.CompanyID,
		}
		if err := ws.Model(project).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionProjectUpdated,
			EntityType: "Project",
			EntityID:   audit.EntityID(project.ID),
			Metadata:   changes,
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject detaches the project's tasks before removing the row;
// children are never cascade-deleted.
func (s *Service) DeleteProject(id uint, actor *model.User, ip string) error {
	project, err := s.GetProject(id)
	if err != nil {
		return err
	}
	if err := authz.RequireEdit(actor, project); err != nil {
		return err
	}

	return s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Model(&model.Task{}).Where("project_id = ?", project.ID).Update("project_id", nil).Error; err != nil {
			return err
		}
		if err := ws.Delete(&model.Project{}, project.ID).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionProjectDeleted,
			EntityType: "Project",
			EntityID:   audit.EntityID(project.ID),
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}
