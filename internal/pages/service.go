// Package pages owns titled documents and their ordered typed blocks,
// including the reconciliation save that turns a full replacement block
// list into minimal create/update/delete/reorder mutations.
//
// Unlike the structured records in the entity package, pages are
// deliberately role-gated only: any Editor may edit any page, without an
// ownership check.
package pages

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

// Service runs page operations against the workspace store and writes
// audit entries to the core store.
type Service struct {
	ws   *gorm.DB
	core *gorm.DB
}

// NewService wires the two store handles. When no separate workspace
// store is configured both arguments are the same *gorm.DB.
func NewService(ws, core *gorm.DB) *Service {
	return &Service{ws: ws, core: core}
}

func (s *Service) inTransaction(fn func(ws, core *gorm.DB) error) error {
	if s.ws == s.core {
		return s.ws.Transaction(func(tx *gorm.DB) error {
			return fn(tx, tx)
		})
	}
	return s.ws.Transaction(func(wtx *gorm.DB) error {
		return s.core.Transaction(func(ctx *gorm.DB) error {
			return fn(wtx, ctx)
		})
	})
}

// ListActive returns non-archived pages, most recently edited first.
func (s *Service) ListActive() ([]model.Page, error) {
	var result []model.Page
	err := s.ws.Where("archived_at IS NULL").
		Order("COALESCE(last_edited_at, created_at) DESC").
		Find(&result).Error
	return result, err
}

// ListArchived returns archived pages, most recently archived first.
func (s *Service) ListArchived(actor *model.User) ([]model.Page, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	var result []model.Page
	err := s.ws.Where("archived_at IS NOT NULL").
		Order("archived_at DESC").
		Find(&result).Error
	return result, err
}

// Get loads one page with blocks in display order. Archived pages are
// hidden from Viewers as if they did not exist.
func (s *Service) Get(id uint, actor *model.User) (*model.Page, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}
	var page model.Page
	err := s.ws.Preload("Blocks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&page, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if page.Archived() && actor.Role == model.RoleViewer {
		return nil, apperr.ErrNotFound
	}
	return &page, nil
}

// View loads the page for display, stamping last_viewed_at and logging a
// page_viewed entry.
func (s *Service) View(id uint, actor *model.User, ip string) (*model.Page, error) {
	page, err := s.Get(id, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	err = s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Model(page).Update("last_viewed_at", now).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionPageViewed,
			EntityType: "Page",
			EntityID:   audit.EntityID(page.ID),
			Metadata:   map[string]any{"title": page.Title},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Create creates an empty page with a normalized title.
func (s *Service) Create(title string, actor *model.User, ip string) (*model.Page, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	page := model.Page{
		Title:           NormalizeTitle(title),
		CreatedByUserID: actor.ID,
	}
	err := s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Create(&page).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionPageCreated,
			EntityType: "Page",
			EntityID:   audit.EntityID(page.ID),
			Metadata:   map[string]any{"title": page.Title},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// QuickCapture creates an untitled page holding one text block with the
// captured text.
func (s *Service) QuickCapture(text string, actor *model.User, ip string) (*model.Page, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	content, err := normalizeContent(model.BlockText, map[string]any{"text": text})
	if err != nil {
		return nil, err
	}

	page := model.Page{
		Title:           UntitledPlaceholder,
		CreatedByUserID: actor.ID,
	}
	err = s.inTransaction(func(ws, core *gorm.DB) error {
		if err := ws.Create(&page).Error; err != nil {
			return err
		}
		block := model.Block{
			PageID:          page.ID,
			Type:            model.BlockText,
			Position:        1,
			Content:         mustJSON(content),
			CreatedByUserID: actor.ID,
		}
		if err := ws.Create(&block).Error; err != nil {
			return err
		}
		if err := audit.Record(core, audit.Entry{
			Action:     audit.ActionPageCreated,
			EntityType: "Page",
			EntityID:   audit.EntityID(page.ID),
			Metadata:   map[string]any{"title": page.Title},
			ActorID:    &actor.ID,
			IP:         ip,
		}); err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionBlockAdded,
			EntityType: "Block",
			EntityID:   audit.EntityID(block.ID),
			Metadata:   map[string]any{"page_id": page.ID, "type": block.Type},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Archive moves an active page to the archived state. Archiving an
// already archived page is a no-op.
func (s *Service) Archive(id uint, actor *model.User, ip string) error {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return err
	}
	page, err := s.Get(id, actor)
	if err != nil {
		return err
	}
	if page.Archived() {
		return nil
	}
	now := time.Now().UTC()
	return s.inTransaction(func(ws, core *gorm.DB) error {
		updates := map[string]any{
			"archived_at":         now,
			"archived_by_user_id": actor.ID,
		}
		if err := ws.Model(page).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionPageArchived,
			EntityType: "Page",
			EntityID:   audit.EntityID(page.ID),
			Metadata:   map[string]any{"title": page.Title},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}

// Restore moves an archived page back to the active state.
func (s *Service) Restore(id uint, actor *model.User, ip string) error {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return err
	}
	page, err := s.Get(id, actor)
	if err != nil {
		return err
	}
	return s.inTransaction(func(ws, core *gorm.DB) error {
		updates := map[string]any{
			"archived_at":         nil,
			"archived_by_user_id": nil,
		}
		if err := ws.Model(page).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(core, audit.Entry{
			Action:     audit.ActionPageRestored,
			EntityType: "Page",
			EntityID:   audit.EntityID(page.ID),
			Metadata:   map[string]any{"title": page.Title},
			ActorID:    &actor.ID,
			IP:         ip,
		})
	})
}
