package model

import "time"

// TaskPageLink joins tasks and pages many-to-many; the pair is the key.
type TaskPageLink struct {
	TaskID    uint      `json:"task_id" gorm:"primaryKey;autoIncrement:false"`
	PageID    uint      `json:"page_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (TaskPageLink) TableName() string { return "task_page_links" }
