package model

import "time"

// ProjectStatuses is the closed status set for projects.
var ProjectStatuses = []string{"idea", "active", "on_hold", "done", StatusArchived}

// Project is a workspace-store record, optionally attached to a Company.
type Project struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"type:varchar(200);not null"`
	Status          string    `json:"status" gorm:"type:varchar(30);not null;default:'idea'"`
	CompanyID       *uint     `json:"company_id,omitempty" gorm:"index"`
	CreatedByUserID uint      `json:"created_by_user_id" gorm:"index;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Project) TableName() string { return "project" }

func (p *Project) OwnedBy() uint { return p.CreatedByUserID }

// ValidProjectStatus reports whether value is a member of the project status set.
func ValidProjectStatus(value string) bool { return containsStatus(ProjectStatuses, value) }
