package database

import (
	"strings"

	_ "modernc.org/sqlite"
)

// ModerncSQLiteDialect is SQLite through the pure Go modernc.org/sqlite
// driver, for builds without cgo
type ModerncSQLiteDialect struct {
	SQLiteDialect
}

// NewModerncSQLiteDialect creates a new cgo-free SQLite dialect
func NewModerncSQLiteDialect() *ModerncSQLiteDialect {
	return &ModerncSQLiteDialect{}
}

func (d *ModerncSQLiteDialect) DriverName() string {
	return "sqlite"
}

func (d *ModerncSQLiteDialect) DSN(config DialectConfig) string {
	if strings.Contains(config.Path, "?") {
		return config.Path
	}
	return config.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
