// Package audit appends action records to the audit_log table in the core
// store. Record always writes on the *gorm.DB handed to it, so an entry
// participates in whatever transaction the calling operation runs in and
// rolls back with it.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workspace-service/internal/model"
)

// Action vocabulary. One tag per mutating operation.
const (
	ActionUserCreated            = "user_created"
	ActionUserUpdated            = "user_updated"
	ActionLogin                  = "login"
	ActionLogout                 = "logout"
	ActionTaskCreated            = "task_created"
	ActionTaskUpdated            = "task_updated"
	ActionTaskDeleted            = "task_deleted"
	ActionProjectCreated         = "project_created"
	ActionProjectUpdated         = "project_updated"
	ActionProjectDeleted         = "project_deleted"
	ActionCompanyCreated         = "company_created"
	ActionCompanyUpdated         = "company_updated"
	ActionCompanyDeleted         = "company_deleted"
	ActionTaskPageLinked         = "task_page_linked"
	ActionTaskPageUnlinked       = "task_page_unlinked"
	ActionWorkspaceDBUpdated     = "workspace_db_updated"
	ActionWorkspaceDBInitialized = "workspace_db_initialized"
	ActionPageCreated            = "page_created"
	ActionPageTitleUpdated       = "page_title_updated"
	ActionPageArchived           = "page_archived"
	ActionPageRestored           = "page_restored"
	ActionPageViewed             = "page_viewed"
	ActionBlockAdded             = "block_added"
	ActionBlockUpdated           = "block_updated"
	ActionBlockDeleted           = "block_deleted"
	ActionBlockReordered         = "block_reordered"
	ActionBootstrapAdminCreated  = "bootstrap_admin_created"
)

// Entry describes one audit record before persistence.
type Entry struct {
	Action     string
	EntityType string
	EntityID   *string
	Metadata   map[string]any
	ActorID    *uint
	IP         string
}

// Record appends one entry on tx.
func Record(tx *gorm.DB, e Entry) error {
	var meta datatypes.JSON
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		meta = raw
	}
	row := model.AuditLog{
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   meta,
		IPAddress:  e.IP,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("record audit entry %q: %w", e.Action, err)
	}
	return nil
}

// EntityID formats a numeric entity id for an Entry.
func EntityID(id uint) *string {
	s := strconv.FormatUint(uint64(id), 10)
	return &s
}
