package pages

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

// Save reconciles blocks as the full intended final state of the page:
// positions are assigned 1..N in list order, unmatched persisted blocks
// are deleted, and every effective change gets one audit entry. The whole
// set of block and title mutations commits atomically. Resubmitting an
// identical list produces no block mutations and no audit entries; only
// last_edited_at is stamped unconditionally.
func (s *Service) Save(pageID uint, title string, blocks []BlockInput, actor *model.User, ip string) error {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return err
	}
	// Validate-then-apply: nothing below may mutate until the full list
	// has passed its shape contracts.
	normalized, err := validateBlocks(blocks)
	if err != nil {
		return err
	}

	return s.inTransaction(func(ws, core *gorm.DB) error {
		var page model.Page
		if err := ws.First(&page, pageID).Error; err != nil {
			return notFound(err)
		}
		if page.Archived() {
			return apperr.Validationf("archived pages must be restored before editing")
		}

		title = NormalizeTitle(title)
		titleChanged := title != page.Title

		var existing []model.Block
		if err := ws.Where("page_id = ?", page.ID).Order("position ASC").Find(&existing).Error; err != nil {
			return err
		}
		existingByID := make(map[uint]*model.Block, len(existing))
		existingOrder := make([]uint, 0, len(existing))
		for i := range existing {
			existingByID[existing[i].ID] = &existing[i]
			existingOrder = append(existingOrder, existing[i].ID)
		}

		logEntry := func(action, entityType string, id uint, meta map[string]any) error {
			return audit.Record(core, audit.Entry{
				Action:     action,
				EntityType: entityType,
				EntityID:   audit.EntityID(id),
				Metadata:   meta,
				ActorID:    &actor.ID,
				IP:         ip,
			})
		}

		// keptIDs collects surviving persisted ids in incoming order; it
		// is compared against the original order to detect a reorder.
		keptIDs := make([]uint, 0, len(normalized))
		seen := make(map[uint]bool, len(normalized))

		for i, data := range normalized {
			position := i + 1
			if data.id != nil {
				if block, ok := existingByID[*data.id]; ok {
					keptIDs = append(keptIDs, block.ID)
					seen[block.ID] = true

					changes := map[string]any{}
					updates := map[string]any{}
					if block.Type != data.typ {
						changes["type"] = data.typ
						updates["type"] = data.typ
					}
					if !contentEqual(block.Content, data.content) {
						changes["content"] = true
						updates["content"] = mustJSON(data.content)
					}
					if block.Position != position {
						changes["position"] = position
						updates["position"] = position
					}
					if len(changes) == 0 {
						continue
					}
					updates["updated_by_user_id"] = actor.ID
					if err := ws.Model(block).Updates(updates).Error; err != nil {
						return err
					}
					if err := logEntry(audit.ActionBlockUpdated, "Block", block.ID, map[string]any{
						"page_id": page.ID,
						"changes": changes,
					}); err != nil {
						return err
					}
					continue
				}
			}

			block := model.Block{
				PageID:          page.ID,
				Type:            data.typ,
				Position:        position,
				Content:         mustJSON(data.content),
				CreatedByUserID: actor.ID,
			}
			if err := ws.Create(&block).Error; err != nil {
				return err
			}
			if err := logEntry(audit.ActionBlockAdded, "Block", block.ID, map[string]any{
				"page_id": page.ID,
				"type":    block.Type,
			}); err != nil {
				return err
			}
		}

		for i := range existing {
			block := &existing[i]
			if seen[block.ID] {
				continue
			}
			if err := logEntry(audit.ActionBlockDeleted, "Block", block.ID, map[string]any{
				"page_id": page.ID,
				"type":    block.Type,
			}); err != nil {
				return err
			}
			if err := ws.Delete(&model.Block{}, block.ID).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		pageUpdates := map[string]any{
			"title":          title,
			"last_edited_at": now,
		}
		if err := ws.Model(&page).Updates(pageUpdates).Error; err != nil {
			return err
		}
		if titleChanged {
			if err := logEntry(audit.ActionPageTitleUpdated, "Page", page.ID, map[string]any{
				"title": title,
			}); err != nil {
				return err
			}
		}

		if !uintSliceEqual(existingOrder, keptIDs) {
			if err := logEntry(audit.ActionBlockReordered, "Page", page.ID, map[string]any{
				"page_id": page.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// contentEqual compares stored JSON against normalized content
// structurally, so key order and encoding differences do not register as
// changes.
func contentEqual(stored datatypes.JSON, content map[string]any) bool {
	raw, err := json.Marshal(content)
	if err != nil {
		return false
	}
	var a, b any
	if err := json.Unmarshal(stored, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func mustJSON(content map[string]any) datatypes.JSON {
	raw, err := json.Marshal(content)
	if err != nil {
		// Normalized content only holds strings, bools and maps.
		panic(err)
	}
	return raw
}

func uintSliceEqual(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
