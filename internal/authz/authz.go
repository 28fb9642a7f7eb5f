// Package authz is the single authorization decision point. Every mutating
// operation in the CRUD and page engines runs through RequireRole or
// RequireEdit before touching the store.
package authz

import (
	"workspace-service/internal/apperr"
	"workspace-service/internal/model"
)

// Ownable is implemented by entities that record their creating user.
type Ownable interface {
	OwnedBy() uint
}

// RequireRole fails with ErrUnauthorized when actor is nil, and with
// ErrForbidden when the actor's role is not among allowed.
func RequireRole(actor *model.User, allowed ...model.Role) error {
	if actor == nil {
		return apperr.ErrUnauthorized
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return apperr.ErrForbidden
}

// CanEdit reports whether actor may mutate entity. Admins may edit
// anything; Editors only what they created; Viewers nothing.
func CanEdit(actor *model.User, entity Ownable) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleEditor:
		return entity.OwnedBy() == actor.ID
	default:
		return false
	}
}

// RequireEdit is CanEdit expressed as the taxonomy: nil actor is
// ErrUnauthorized, a failed check is ErrForbidden.
func RequireEdit(actor *model.User, entity Ownable) error {
	if actor == nil {
		return apperr.ErrUnauthorized
	}
	if !CanEdit(actor, entity) {
		return apperr.ErrForbidden
	}
	return nil
}
