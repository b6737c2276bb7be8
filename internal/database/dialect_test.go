package database

import (
	"strings"
	"testing"
)

func TestDialectDrivers(t *testing.T) {
	tests := []struct {
		name      string
		dialect   Dialect
		driver    string
		subdir    string
		upsertKey string
	}{
		{"SQLite", NewSQLiteDialect(), "sqlite3", "sqlite", "ON CONFLICT"},
		{"modernc SQLite", NewModerncSQLiteDialect(), "sqlite", "sqlite", "ON CONFLICT"},
		{"PostgreSQL", NewPostgresDialect(), "postgres", "postgres", "ON CONFLICT"},
		{"MySQL", NewMySQLDialect(), "mysql", "mysql", "ON DUPLICATE KEY UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.subdir)
			}
			if got := tt.dialect.UpsertProgressQuery(); !strings.Contains(got, tt.upsertKey) {
				t.Errorf("UpsertProgressQuery() missing %q: %s", tt.upsertKey, got)
			}
			if got := strings.Count(tt.dialect.UpsertProgressQuery(), "?"); got != 7 {
				t.Errorf("UpsertProgressQuery() has %d placeholders, want 7", got)
			}
		})
	}
}

func TestDialectDSN(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		config   DialectConfig
		expected string
	}{
		{
			name:     "SQLite adds pragmas",
			dialect:  NewSQLiteDialect(),
			config:   DialectConfig{Path: "./mathclash.db"},
			expected: "./mathclash.db?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name:     "SQLite keeps explicit options",
			dialect:  NewSQLiteDialect(),
			config:   DialectConfig{Path: "file:test.db?cache=shared"},
			expected: "file:test.db?cache=shared",
		},
		{
			name:     "modernc pragmas",
			dialect:  NewModerncSQLiteDialect(),
			config:   DialectConfig{Path: "test.db"},
			expected: "test.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		{
			name:     "MySQL adds parseTime",
			dialect:  NewMySQLDialect(),
			config:   DialectConfig{URL: "user:pass@tcp(localhost:3306)/mathclash"},
			expected: "user:pass@tcp(localhost:3306)/mathclash?parseTime=true",
		},
		{
			name:     "MySQL appends to existing options",
			dialect:  NewMySQLDialect(),
			config:   DialectConfig{URL: "user:pass@tcp(localhost:3306)/mathclash?charset=utf8mb4"},
			expected: "user:pass@tcp(localhost:3306)/mathclash?charset=utf8mb4&parseTime=true",
		},
		{
			name:     "PostgreSQL passes URL through",
			dialect:  NewPostgresDialect(),
			config:   DialectConfig{URL: "postgres://localhost/mathclash?sslmode=disable"},
			expected: "postgres://localhost/mathclash?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DSN(tt.config); got != tt.expected {
				t.Errorf("DSN() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM game_progress WHERE student_id = ?",
			expected: "SELECT * FROM game_progress WHERE student_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM game_progress WHERE student_id = ?",
			expected: "SELECT * FROM game_progress WHERE student_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM game_progress WHERE student_id = ? AND game_id = ?",
			expected: "SELECT * FROM game_progress WHERE student_id = $1 AND game_id = $2",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE game_progress SET best_score = ? WHERE student_id = ?",
			expected: "UPDATE game_progress SET best_score = ? WHERE student_id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}
