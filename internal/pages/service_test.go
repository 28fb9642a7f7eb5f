package pages

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workspace-service/internal/apperr"
	"workspace-service/internal/audit"
	"workspace-service/internal/model"
)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	admin  *model.User
	editor *model.User
	viewer *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.AuditLog{},
		&model.Page{}, &model.Block{},
	))

	f := &fixture{svc: NewService(db, db), db: db}
	f.admin = f.createUser(t, "alice", model.RoleAdmin)
	f.editor = f.createUser(t, "bob", model.RoleEditor)
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

func TestCreatePage(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.Create("  Meeting notes ", f.editor, "")
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes", page.Title)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageCreated))

	_, err = f.svc.Create("x", f.viewer, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestQuickCapture(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.QuickCapture("remember the milk", f.editor, "")
	require.NoError(t, err)
	assert.Equal(t, UntitledPlaceholder, page.Title)

	loaded, err := f.svc.Get(page.ID, f.editor)
	require.NoError(t, err)
	require.Len(t, loaded.Blocks, 1)
	assert.Equal(t, model.BlockText, loaded.Blocks[0].Type)
	assert.Equal(t, 1, loaded.Blocks[0].Position)

	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageCreated))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionBlockAdded))
}

func TestViewStampsLastViewed(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Create("p", f.editor, "")
	require.NoError(t, err)

	viewed, err := f.svc.View(page.ID, f.viewer, "")
	require.NoError(t, err)
	assert.Equal(t, page.ID, viewed.ID)

	var reloaded model.Page
	require.NoError(t, f.db.First(&reloaded, page.ID).Error)
	assert.NotNil(t, reloaded.LastViewedAt)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageViewed))
}

func TestArchiveLifecycle(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Create("p", f.editor, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Archive(page.ID, f.editor, ""))
	// Re-archiving is a silent no-op.
	require.NoError(t, f.svc.Archive(page.ID, f.editor, ""))
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageArchived))

	// Hidden from viewers entirely.
	_, err = f.svc.Get(page.ID, f.viewer)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Editors can still see it in the archive list.
	archived, err := f.svc.ListArchived(f.editor)
	require.NoError(t, err)
	require.Len(t, archived, 1)

	// Viewers may not browse the archive.
	_, err = f.svc.ListArchived(f.viewer)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Gone from the active list.
	active, err := f.svc.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, f.svc.Restore(page.ID, f.editor, ""))
	active, err = f.svc.ListActive()
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.EqualValues(t, 1, f.auditCount(t, audit.ActionPageRestored))
}

func TestAnyEditorMayEditAnyPage(t *testing.T) {
	f := newFixture(t)
	other := f.createUser(t, "carol", model.RoleEditor)

	page, err := f.svc.Create("shared", f.editor, "")
	require.NoError(t, err)

	// Pages are role-gated, not ownership-scoped.
	err = f.svc.Save(page.ID, "shared", []BlockInput{
		{Type: "text", Content: map[string]any{"text": "from carol"}},
	}, other, "")
	assert.NoError(t, err)
}
