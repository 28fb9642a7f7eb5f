package model

import "time"

// TaskStatuses is the closed status set for tasks.
var TaskStatuses = []string{"backlog", "in_progress", "blocked", "done", StatusArchived}

// Task is a workspace-store record, optionally attached to a Project.
type Task struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Title           string     `json:"title" gorm:"type:varchar(200);not null"`
	Status          string     `json:"status" gorm:"type:varchar(30);not null;default:'backlog'"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	ProjectID       *uint      `json:"project_id,omitempty" gorm:"index"`
	CreatedByUserID uint       `json:"created_by_user_id" gorm:"index;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Task) TableName() string { return "task" }

func (t *Task) OwnedBy() uint { return t.CreatedByUserID }

// ValidTaskStatus reports whether value is a member of the task status set.
func ValidTaskStatus(value string) bool { return containsStatus(TaskStatuses, value) }
