package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency between the mirror job and readers
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the mirror schema. Statements are idempotent so the server
// can run them on every start.
func (db *DB) Migrate() error {
	return Migrate(db.conn)
}

// Migrate runs the schema statements against an arbitrary connection. Tests
// use this directly on in-memory databases.
func Migrate(conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id               TEXT PRIMARY KEY,
			code             TEXT NOT NULL UNIQUE,
			name             TEXT NOT NULL,
			client           TEXT NOT NULL DEFAULT '',
			active           INTEGER NOT NULL DEFAULT 1,
			last_mirrored_at TEXT,
			created_at       TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS wbs_nodes (
			id         TEXT NOT NULL,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			parent_id  TEXT,
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			pv         REAL NOT NULL DEFAULT 0,
			ev         REAL NOT NULL DEFAULT 0,
			ac         REAL NOT NULL DEFAULT 0,
			bac        REAL NOT NULL DEFAULT 0,
			seq        INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wbs_nodes_project ON wbs_nodes(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_wbs_nodes_parent ON wbs_nodes(project_id, parent_id)`,
		`CREATE TABLE IF NOT EXISTS sap_mappings (
			project_id TEXT NOT NULL,
			node_id    TEXT NOT NULL,
			posid      TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (project_id, node_id),
			FOREIGN KEY (project_id, node_id) REFERENCES wbs_nodes(project_id, id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS tree_ui_state (
			session_id  TEXT NOT NULL,
			project_id  TEXT NOT NULL,
			expanded_ids TEXT NOT NULL DEFAULT '[]',
			selected_id TEXT,
			updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (session_id, project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mirror_runs (
			id              TEXT PRIMARY KEY,
			started_at      TEXT NOT NULL,
			finished_at     TEXT,
			status          TEXT NOT NULL DEFAULT 'running',
			projects_total  INTEGER NOT NULL DEFAULT 0,
			projects_failed INTEGER NOT NULL DEFAULT 0,
			detail          TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
