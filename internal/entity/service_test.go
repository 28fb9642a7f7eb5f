package entity_test

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workspace-service/internal/entity"
	"workspace-service/internal/model"
)

// fixture wires an entity service onto a single sqlite store playing both
// the workspace and core roles, with one user per role.
type fixture struct {
	svc    *entity.Service
	db     *gorm.DB
	admin  *model.User
	editor *model.User
	other  *model.User
	viewer *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.AuditLog{}, &model.AppSetting{},
		&model.Company{}, &model.Project{}, &model.Task{},
		&model.Page{}, &model.Block{}, &model.TaskPageLink{}, &model.SavedView{},
	))

	f := &fixture{svc: entity.NewService(db, db), db: db}
	f.admin = f.createUser(t, "alice", model.RoleAdmin)
	f.editor = f.createUser(t, "bob", model.RoleEditor)
	f.other = f.createUser(t, "carol", model.RoleEditor)
	f.viewer = f.createUser(t, "dave", model.RoleViewer)
	return f
}

func (f *fixture) createUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	user := model.User{Username: username, PasswordHash: "x", Role: role, Active: true}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func (f *fixture) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func (f *fixture) lastAudit(t *testing.T, action string) *model.AuditLog {
	t.Helper()
	var entry model.AuditLog
	require.NoError(t, f.db.Where("action = ?", action).Order("id DESC").First(&entry).Error)
	return &entry
}
