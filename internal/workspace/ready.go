package workspace

import "gorm.io/gorm"

// Configured reports whether a workspace store is wired into the running
// process. It says nothing about whether the schema exists there yet.
func Configured(ws *gorm.DB) bool {
	return ws != nil
}

// Ready reports whether the workspace store is configured and already
// contains every required table. An operator can save a new location that
// has not been initialized; configured-but-not-ready is a distinct state
// the handlers surface as "setup required" rather than an error.
func Ready(ws *gorm.DB) bool {
	if ws == nil {
		return false
	}
	migrator := ws.Migrator()
	for _, table := range Tables {
		if !migrator.HasTable(table) {
			return false
		}
	}
	return true
}
