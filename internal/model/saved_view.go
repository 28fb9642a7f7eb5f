package model

import (
	"time"

	"gorm.io/datatypes"
)

// DatabaseKeys enumerates the entity list screens a saved view can target.
var DatabaseKeys = []string{"tasks", "projects", "companies"}

// SavedView is a per-user named snapshot of list query parameters. At most
// one view per (user, database key) may carry the default flag.
type SavedView struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"uniqueIndex:uniq_saved_view,priority:1;not null"`
	DatabaseKey string         `json:"database_key" gorm:"type:varchar(30);uniqueIndex:uniq_saved_view,priority:2;not null"`
	Name        string         `json:"name" gorm:"type:varchar(120);uniqueIndex:uniq_saved_view,priority:3;not null"`
	Query       datatypes.JSON `json:"query" gorm:"type:json"`
	IsDefault   bool           `json:"is_default" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (SavedView) TableName() string { return "saved_view" }

// ValidDatabaseKey reports whether value names a known entity list screen.
func ValidDatabaseKey(value string) bool { return containsStatus(DatabaseKeys, value) }
