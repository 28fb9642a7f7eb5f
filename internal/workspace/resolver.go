// Package workspace resolves, at process start and on admin action, where
// the core and workspace databases live. The workspace location may come
// from the environment or from a value persisted inside the core store
// itself; the persisted value is read through a raw database/sql
// connection so the decision never depends on the GORM schema layer whose
// configuration it determines.
package workspace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/lib/pq"

	"workspace-service/internal/apperr"
)

// SettingKey is the app_setting row holding the workspace database URL.
const SettingKey = "workspace_database_url"

const (
	defaultCoreFile      = "workspace_core.db"
	defaultWorkspaceFile = "workspace_home.db"
)

// Tables is the schema set the workspace store must contain to be ready.
var Tables = []string{"page", "company", "project", "task", "task_page_links", "saved_view"}

// Drivers accepted in store URLs.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// CleanURL normalizes a free-form URL value: whitespace-only becomes empty.
func CleanURL(value string) string {
	return strings.TrimSpace(value)
}

// SplitURL breaks a store URL into driver and DSN. Bare filesystem paths
// are treated as SQLite databases.
func SplitURL(raw string) (driver, dsn string, err error) {
	cleaned := CleanURL(raw)
	switch {
	case cleaned == "":
		return "", "", apperr.Configf("database URL is required")
	case strings.HasPrefix(cleaned, "sqlite://"):
		path := strings.TrimPrefix(cleaned, "sqlite://")
		if path == "" {
			return "", "", apperr.Configf("sqlite URL is missing a path")
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(cleaned, "postgres://"), strings.HasPrefix(cleaned, "postgresql://"):
		return DriverPostgres, cleaned, nil
	case strings.Contains(cleaned, "://"):
		scheme := cleaned[:strings.Index(cleaned, "://")]
		return "", "", apperr.Configf("unsupported database URL scheme: %s", scheme)
	default:
		return DriverSQLite, cleaned, nil
	}
}

// DefaultCoreURL is the primary-store fallback anchored at the writable
// data directory.
func DefaultCoreURL(dataDir string) string {
	return "sqlite://" + filepath.Join(dataDir, defaultCoreFile)
}

// DefaultWorkspaceURL is the location offered when an admin picks the
// default storage mode.
func DefaultWorkspaceURL(dataDir string) string {
	return "sqlite://" + filepath.Join(dataDir, defaultWorkspaceFile)
}

// ResolvePrimaryURL picks the core store URL: explicit configuration wins,
// then the legacy environment value, then the computed default.
func ResolvePrimaryURL(configured, legacyFallback, dataDir string) string {
	if cleaned := CleanURL(configured); cleaned != "" {
		return cleaned
	}
	if cleaned := CleanURL(legacyFallback); cleaned != "" {
		return cleaned
	}
	return DefaultCoreURL(dataDir)
}

// ResolveWorkspaceURL picks the workspace store URL: the explicit
// environment value wins; otherwise the setting persisted inside the core
// store is read raw. Empty means unconfigured, never an error: a core
// store or app_setting table that does not exist yet is simply "no value".
func ResolveWorkspaceURL(coreURL, envURL string) string {
	if cleaned := CleanURL(envURL); cleaned != "" {
		return cleaned
	}
	return readSettingRaw(coreURL, SettingKey)
}

// readSettingRaw looks a setting up through database/sql only. The GORM
// layer for the workspace bind cannot exist yet when this runs.
func readSettingRaw(coreURL, key string) string {
	driver, dsn, err := SplitURL(coreURL)
	if err != nil {
		return ""
	}

	var query string
	switch driver {
	case DriverSQLite:
		if _, err := os.Stat(dsn); err != nil {
			return ""
		}
		query = "SELECT value FROM app_setting WHERE key = ? LIMIT 1"
	case DriverPostgres:
		query = "SELECT value FROM app_setting WHERE key = $1 LIMIT 1"
	default:
		return ""
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return ""
	}
	defer db.Close()

	var value string
	if err := db.QueryRow(query, key).Scan(&value); err != nil {
		// Missing table and missing row both land here.
		return ""
	}
	return CleanURL(value)
}

// ValidateURL checks an operator-supplied workspace URL eagerly, before it
// is persisted. SQLite paths are resolved against baseDir when relative;
// the parent directory must exist or be creatable, and be writable.
// The returned URL is the normalized form to persist.
func ValidateURL(raw, baseDir string) (string, error) {
	driver, dsn, err := SplitURL(raw)
	if err != nil {
		return "", err
	}
	if driver != DriverSQLite {
		return CleanURL(raw), nil
	}

	path := dsn
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", apperr.Configf("cannot create directory for sqlite database: %s", parent)
	}
	if err := probeWritable(parent); err != nil {
		return "", apperr.Configf("directory is not writable: %s", parent)
	}
	return "sqlite://" + path, nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return errors.Join(err, os.Remove(name))
	}
	return os.Remove(name)
}

// String descriptions used on the admin storage screen.
func DescribeURL(raw string) string {
	driver, dsn, err := SplitURL(raw)
	if err != nil {
		return raw
	}
	if driver == DriverSQLite {
		return fmt.Sprintf("sqlite file %s", dsn)
	}
	return "postgres database"
}
