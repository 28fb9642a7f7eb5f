package entity

import (
	"strings"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

var companySortColumns = map[string]string{
	"name":       "company.name",
	"status":     "company.status",
	"updated_at": "company.updated_at",
}

// CompanyInput carries company fields for create and update.
type CompanyInput struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ListCompanies returns companies matching q.
func (s *Service) ListCompanies(q ListQuery) ([]model.Company, error) {
	tx := s.ws.Model(&model.Company{})

	if term := strings.TrimSpace(q.Q); term != "" {
		tx = tx.Where("LOWER(company.name) LIKE ?", likePattern(term))
	}
	if q.Status != "" {
		tx = tx.Where("company.status = ?", q.Status)
	}
	if !q.includeArchived() {
		tx = tx.Where("company.status <> ?", model.StatusArchived)
	}

	tx = tx.Order(orderClause(companySortColumns, q.Sort, q.Dir, "company.updated_at"))

	var companies []model.Company
	if err := tx.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// GetCompany loads one company.
func (s *Service) GetCompany(id uint) (*model.Company, error) {
	var company model.Company
	if err := s.ws.First(&company, id).Error; err != nil {
		return nil, notFoundOr(err, "load company")
	}
	return &company, nil
}

func validateCompanyInput(in *CompanyInput, defaultStatus string) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validationf("company name is required")
	}
	if in.Status == "" {
		in.Status = defaultStatus
	}
	if !model.ValidCompanyStatus(in.Status) {
		return apperr.Validationf("invalid company status")
	}
	return nil
}

// CreateCompany creates a company for actor and logs the creation.
func (s *Service) CreateCompany(in CompanyInput, actor *model.User, ip string) (*model.Company, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	if err := validateCompanyInput(&in, "active"); err != nil {
		return nil, err
	}

	company := model.Company{
		Name:            in.Name,
		Status:          in.Status,
		CreatedByUserID: actor.ID,
	}
	err := s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Create(&company).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionCompanyCreated,
			EntityType: "Company",
			EntityID:   audit.EntityID(company.ID),
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany applies in to the company after the ownership check.
func (s *Service) UpdateCompany(id uint, in CompanyInput, actor *model.User, ip string) (*model.Company, error) {
	company, err := s.GetCompany(id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireEdit(actor, company); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = company.Status
	}
	if err := validateCompanyInput(&in, company.Status); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Name != company.Name {
		changes["name"] = map[string]any{"from": company.Name, "to": in.Name}
	}
	if in.Status != company.Status {
		changes["status"] = map[string]any{"from": company.Status, "to": in.Status}
	}

	err = s.inTransaction(func(ws, core *gorm.DB) error {
		updates := map[string]any{"name": in.Name, "status": in.Status}
		if err := ws.Model(company).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionCompanyUpdated,
			EntityType: "Company",
			EntityID:   audit.EntityID(company.ID),
			Metadata:   changes,
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany detaches the company's projects before removing the row;
// children are never cascade-deleted.
func (s *Service) DeleteCompany(id uint, actor *model.User, ip string) error {
	company, err := s.GetCompany(id)
	if err != nil {
		return err
	}
	if err := authz.RequireEdit(actor, company); err != nil {
		return err
	}

	return s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Model(&model.Project{}).Where("company_id = ?", company.ID).Update("company_id", nil).Error; err != nil {
			return err
		}
		if err := ws.Delete(&model.Company{}, company.ID).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionCompanyDeleted,
			EntityType: "Company",
			EntityID:   audit.EntityID(company.ID),
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}
