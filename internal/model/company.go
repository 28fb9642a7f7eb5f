package model

import "time"

// StatusArchived is shared by every workspace entity type; list endpoints
// exclude it unless explicitly asked to include archived rows.
const StatusArchived = "archived"

// CompanyStatuses is the closed status set for companies.
var CompanyStatuses = []string{"active", "prospect", StatusArchived}

// Company is a workspace-store record.
type Company struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"type:varchar(200);not null"`
	Status          string    `json:"status" gorm:"type:varchar(30);not null;default:'active'"`
	CreatedByUserID uint      `json:"created_by_user_id" gorm:"index;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Company) TableName() string { return "company" }

// OwnedBy reports the creating user, used for ownership-scoped permissions.
func (c *Company) OwnedBy() uint { return c.CreatedByUserID }

// ValidCompanyStatus reports whether value is a member of the company status set.
func ValidCompanyStatus(value string) bool { return containsStatus(CompanyStatuses, value) }

func containsStatus(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
