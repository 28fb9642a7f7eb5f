package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
)

// ListViews returns actor's saved views for one entity list screen.
func (s *Service) ListViews(actor *model.User, key string) ([]model.SavedView, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}
	if !model.ValidDatabaseKey(key) {
		return nil, apperr.ErrNotFound
	}
	var views []model.SavedView
	err := s.ws.Where("user_id = ? AND database_key = ?", actor.ID, key).
		Order("name ASC").
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// GetView loads one saved view; only its owner may use it.
func (s *Service) GetView(actor *model.User, viewID uint) (*model.SavedView, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}
	var view model.SavedView
	if err := s.ws.First(&view, viewID).Error; err != nil {
		return nil, notFoundOr(err, "load saved view")
	}
	if view.UserID != actor.ID {
		return nil, apperr.ErrForbidden
	}
	return &view, nil
}

// DefaultView returns actor's default view for key, or nil when none is set.
func (s *Service) DefaultView(actor *model.User, key string) (*model.SavedView, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}
	var view model.SavedView
	err := s.ws.Where("user_id = ? AND database_key = ? AND is_default = ?", actor.ID, key, true).
		First(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SaveView upserts a view by (user, database key, name). When isDefault
// is set, every other default for the same (user, key) pair is cleared in
// the same transaction so at most one default ever exists.
func (s *Service) SaveView(actor *model.User, key, name string, query ListQuery, isDefault bool) (*model.SavedView, error) {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return nil, err
	}
	if !model.ValidDatabaseKey(key) {
		return nil, apperr.ErrNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("view name is required")
	}
	snapshot, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal view query: %w", err)
	}

	var view model.SavedView
	err = s.ws.Transaction(func(tx *gorm.DB) error {
		if isDefault {
			err := tx.Model(&model.SavedView{}).
				Where("user_id = ? AND database_key = ? AND is_default = ?", actor.ID, key, true).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}

		err := tx.Where("user_id = ? AND database_key = ? AND name = ?", actor.ID, key, name).
			First(&view).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			view = model.SavedView{
				UserID:      actor.ID,
				DatabaseKey: key,
				Name:        name,
				Query:       snapshot,
				IsDefault:   isDefault,
			}
			return tx.Create(&view).Error
		case err != nil:
			return err
		default:
			return tx.Model(&view).Updates(map[string]any{
				"query":      snapshot,
				"is_default": isDefault,
			}).Error
		}
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteView removes one of actor's saved views.
func (s *Service) DeleteView(actor *model.User, key string, viewID uint) error {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return err
	}
	view, err := s.GetView(actor, viewID)
	if err != nil {
		return err
	}
	if view.DatabaseKey != key {
		return apperr.ErrForbidden
	}
	return s.ws.Delete(&model.SavedView{}, view.ID).Error
}

// SetDefaultView makes viewID actor's default for its screen, atomically
// clearing any previous default.
func (s *Service) SetDefaultView(actor *model.User, key string, viewID uint) error {
	if err := authz.RequireRole(actor, model.RoleAdmin, model.RoleEditor); err != nil {
		return err
	}
	view, err := s.GetView(actor, viewID)
	if err != nil {
		return err
	}
	if view.DatabaseKey != key {
		return apperr.ErrForbidden
	}

	return s.ws.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.SavedView{}).
			Where("user_id = ? AND database_key = ? AND is_default = ?", actor.ID, view.DatabaseKey, true).
			Update("is_default", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.SavedView{}).Where("id = ?", view.ID).Update("is_default", true).Error
	})
}

// ApplyView re-expresses a saved snapshot as canonical list parameters for
// a fresh list call.
func ApplyView(view *model.SavedView) (ListQuery, error) {
	var q ListQuery
	if len(view.Query) == 0 {
		return q, nil
	}
	if err := json.Unmarshal(view.Query, &q); err != nil {
		return q, fmt.Errorf("decode view query: %w", err)
	}
	return q, nil
}
