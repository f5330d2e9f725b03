// Package duckdb persists context count tables and predictor parameter
// lists in DuckDB so runs can be queried after the fact.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for run results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			mode VARCHAR,
			flank BIGINT,
			input_path VARCHAR,
			input_size BIGINT,
			input_modtime TIMESTAMP,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS context_counts (
			run_id VARCHAR,
			context VARCHAR,
			count BIGINT,
			one_mer VARCHAR,
			PRIMARY KEY (run_id, context)
		)`,
		`CREATE TABLE IF NOT EXISTS poibin_params (
			run_id VARCHAR,
			idx BIGINT,
			chrom VARCHAR,
			pos BIGINT,
			context VARCHAR,
			prob DOUBLE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// appender opens a DuckDB Appender on table. The returned close function
// flushes and releases both the appender and its connection.
func (s *Store) appender(table string) (*goduckdb.Appender, func() error, error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender: %w", err)
	}

	closeFn := func() error {
		err := appender.Close()
		if cerr := conn.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return appender, closeFn, nil
}
