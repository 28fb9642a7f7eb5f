package workspace_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"workspace-service/internal/apperr"
	"workspace-service/internal/model"
	"workspace-service/internal/workspace"
)

func TestSplitURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{"sqlite scheme", "sqlite:///tmp/app.db", workspace.DriverSQLite, "/tmp/app.db", false},
		{"bare path is sqlite", "data/app.db", workspace.DriverSQLite, "data/app.db", false},
		{"postgres", "postgres://u:p@localhost/db", workspace.DriverPostgres, "postgres://u:p@localhost/db", false},
		{"postgresql alias", "postgresql://localhost/db", workspace.DriverPostgres, "postgresql://localhost/db", false},
		{"whitespace trimmed", "  sqlite://x.db  ", workspace.DriverSQLite, "x.db", false},
		{"empty", "   ", "", "", true},
		{"sqlite missing path", "sqlite://", "", "", true},
		{"unknown scheme", "mysql://localhost/db", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, err := workspace.SplitURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsConfig(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestResolvePrimaryURL(t *testing.T) {
	assert.Equal(t, "sqlite://a.db", workspace.ResolvePrimaryURL("sqlite://a.db", "sqlite://b.db", "/data"))
	assert.Equal(t, "sqlite://b.db", workspace.ResolvePrimaryURL("", "sqlite://b.db", "/data"))
	assert.Equal(t, workspace.DefaultCoreURL("/data"), workspace.ResolvePrimaryURL("", "", "/data"))
	assert.Equal(t, workspace.DefaultCoreURL("/data"), workspace.ResolvePrimaryURL("   ", "", "/data"))
}

func TestResolveWorkspaceURLEnvWins(t *testing.T) {
	got := workspace.ResolveWorkspaceURL("sqlite:///nonexistent/core.db", "sqlite:///env/ws.db")
	assert.Equal(t, "sqlite:///env/ws.db", got)
}

func TestResolveWorkspaceURLFromCoreStore(t *testing.T) {
	dir := t.TempDir()
	corePath := filepath.Join(dir, "core.db")

	db, err := sql.Open("sqlite", corePath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE app_setting (key TEXT PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO app_setting (key, value) VALUES (?, ?)`,
		workspace.SettingKey, "sqlite://"+filepath.Join(dir, "ws.db"))
	require.NoError(t, err)

	got := workspace.ResolveWorkspaceURL("sqlite://"+corePath, "")
	assert.Equal(t, "sqlite://"+filepath.Join(dir, "ws.db"), got)
}

func TestResolveWorkspaceURLToleratesMissingState(t *testing.T) {
	dir := t.TempDir()

	// Core file does not exist yet.
	assert.Equal(t, "", workspace.ResolveWorkspaceURL("sqlite://"+filepath.Join(dir, "absent.db"), ""))

	// Core file exists but the settings table does not.
	emptyPath := filepath.Join(dir, "empty.db")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	assert.Equal(t, "", workspace.ResolveWorkspaceURL("sqlite://"+emptyPath, ""))

	// Table exists but the row does not.
	db, err := sql.Open("sqlite", filepath.Join(dir, "norow.db"))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE app_setting (key TEXT PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.Equal(t, "", workspace.ResolveWorkspaceURL("sqlite://"+filepath.Join(dir, "norow.db"), ""))

	// Unusable URL.
	assert.Equal(t, "", workspace.ResolveWorkspaceURL("", ""))
}

func TestValidateURL(t *testing.T) {
	dir := t.TempDir()

	t.Run("relative sqlite path resolves against base", func(t *testing.T) {
		got, err := workspace.ValidateURL("sqlite://nested/ws.db", dir)
		require.NoError(t, err)
		assert.Equal(t, "sqlite://"+filepath.Join(dir, "nested", "ws.db"), got)
		_, statErr := os.Stat(filepath.Join(dir, "nested"))
		assert.NoError(t, statErr)
	})

	t.Run("absolute sqlite path kept", func(t *testing.T) {
		target := filepath.Join(dir, "abs.db")
		got, err := workspace.ValidateURL("sqlite://"+target, "/elsewhere")
		require.NoError(t, err)
		assert.Equal(t, "sqlite://"+target, got)
	})

	t.Run("postgres passes through untouched", func(t *testing.T) {
		got, err := workspace.ValidateURL("postgres://localhost/ws", dir)
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/ws", got)
	})

	t.Run("unknown scheme rejected", func(t *testing.T) {
		_, err := workspace.ValidateURL("mysql://localhost/ws", dir)
		assert.True(t, apperr.IsConfig(err))
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := workspace.ValidateURL("", dir)
		assert.True(t, apperr.IsConfig(err))
	})
}

func TestConfiguredAndReady(t *testing.T) {
	assert.False(t, workspace.Configured(nil))
	assert.False(t, workspace.Ready(nil))

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ws.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Configured but with no schema yet.
	assert.True(t, workspace.Configured(db))
	assert.False(t, workspace.Ready(db))

	// Partial schema is still not ready.
	require.NoError(t, db.AutoMigrate(&model.Page{}, &model.Company{}))
	assert.False(t, workspace.Ready(db))

	require.NoError(t, db.AutoMigrate(
		&model.Project{}, &model.Task{}, &model.TaskPageLink{}, &model.SavedView{}, &model.Block{},
	))
	assert.True(t, workspace.Ready(db))
}
