// Package database opens and owns the two GORM stores: the core store
// (users, audit log, settings) and the optional workspace store (business
// entities). When the resolved workspace URL is the core URL the core
// handle is reused as the workspace handle, which keeps every cross-store
// write a single transaction; with no workspace URL at all the workspace
// handle stays nil and entity operations surface "setup required".
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workspace-service/internal/model"
	"workspace-service/internal/workspace"
	"workspace-service/pkg/config"
)

var (
	core *gorm.DB
	ws   *gorm.DB
)

// CoreModels is the schema set migrated into the core store at startup.
var CoreModels = []any{&model.User{}, &model.AuditLog{}, &model.AppSetting{}}

// WorkspaceModels is the schema set created by the explicit workspace
// initialize action. It is never auto-migrated at startup; readiness is an
// operator decision.
var WorkspaceModels = []any{
	&model.Company{},
	&model.Project{},
	&model.Task{},
	&model.Page{},
	&model.Block{},
	&model.TaskPageLink{},
	&model.SavedView{},
}

// Open connects to a store URL, selecting the dialector from the scheme.
func Open(rawURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	driver, dsn, err := workspace.SplitURL(rawURL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case workspace.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case workspace.DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if logLevel == 0 {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s store: %w", driver, err)
	}
	return db, nil
}

// InitCore opens the core store at coreURL and migrates its schema.
func InitCore(coreURL string, cfg *config.Config) error {
	db, err := Open(coreURL, cfg.DB.LogLevel)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get core connection: %w", err)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(CoreModels...); err != nil {
		return fmt.Errorf("migrate core schema: %w", err)
	}
	core = db
	return nil
}

// InitWorkspace opens the workspace store. When wsURL matches coreURL the
// core handle is reused so both stores share one connection and one
// transaction scope. The schema is deliberately not migrated here; see
// MigrateWorkspace.
func InitWorkspace(wsURL, coreURL string, cfg *config.Config) error {
	if workspace.CleanURL(wsURL) == workspace.CleanURL(coreURL) {
		ws = core
		return nil
	}
	db, err := Open(wsURL, cfg.DB.LogLevel)
	if err != nil {
		return err
	}
	ws = db
	return nil
}

// MigrateWorkspace creates the full workspace schema on db.
func MigrateWorkspace(db *gorm.DB) error {
	if err := db.AutoMigrate(WorkspaceModels...); err != nil {
		return fmt.Errorf("migrate workspace schema: %w", err)
	}
	return nil
}

// GetCore returns the core store handle.
func GetCore() *gorm.DB {
	return core
}

// GetWorkspace returns the workspace store handle, or nil when no
// workspace location has been resolved.
func GetWorkspace() *gorm.DB {
	return ws
}

// WorkspaceSplit reports whether the workspace lives in a separate store
// rather than sharing the core database.
func WorkspaceSplit() bool {
	return ws != nil && ws != core
}

// SetWorkspace replaces the workspace handle. Used by the admin
// initialize action after migrating a freshly configured store.
func SetWorkspace(db *gorm.DB) {
	ws = db
}
