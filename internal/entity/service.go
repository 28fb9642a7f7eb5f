// Package entity implements list/create/update/delete over the workspace
// records (companies, projects, tasks) plus saved list views, with the
// role/ownership guard applied at the top of every mutating operation.
package entity

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"workspace-service/internal/apperr"
)

// Service runs entity operations against the workspace store and writes
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

// inTransaction runs fn with transactional handles for both stores. With
// a single store the two handles are one transaction, so a mutation and
// its audit entry commit or roll back together. With split stores the
// core (audit) transaction is nested inside the workspace transaction: an
// error on either side rolls back both pending sides.
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

// ListQuery carries the canonical list filter parameters. Values arrive
// as strings so a saved view snapshot round-trips without translation.
type ListQuery struct {
	Q               string `json:"q"`
	Status          string `json:"status"`
	Sort            string `json:"sort"`
	Dir             string `json:"dir"`
	IncludeArchived string `json:"include_archived"`
	ProjectID       string `json:"project_id"`
	CompanyID       string `json:"company_id"`
}

func (q ListQuery) includeArchived() bool {
	return q.IncludeArchived == "1"
}

// normalizeDir folds anything that is not asc/desc onto desc.
func normalizeDir(dir string) string {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		return "asc"
	case "desc":
		return "desc"
	default:
		return "desc"
	}
}

// orderClause resolves the sort key against a per-entity whitelist,
// falling back to the updated_at column when the key is unknown.
func orderClause(columns map[string]string, sort, dir, fallback string) string {
	column, ok := columns[strings.TrimSpace(sort)]
	if !ok {
		column = fallback
	}
	return column + " " + normalizeDir(dir)
}

func notFoundOr(err error, wrap string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return errors.Join(errors.New(wrap), err)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
