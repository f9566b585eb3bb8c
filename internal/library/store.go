// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package library owns the schema of the track library database and the
// registration of watched music directories.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DBFileName is the library database inside the settings directory.
const DBFileName = "mixxxdb.sqlite"

// ErrSchema wraps every schema initialisation failure.
var ErrSchema = errors.New("library schema initialisation failed")

// AddResult classifies a directory registration.
type AddResult int

const (
	AddOK AddResult = iota
	AddAlreadyRegistered
	AddInvalidDirectory
)

func (r AddResult) String() string {
	switch r {
	case AddOK:
		return "ok"
	case AddAlreadyRegistered:
		return "already_registered"
	case AddInvalidDirectory:
		return "invalid_directory"
	default:
		return "unknown"
	}
}

// Store provides SQLite persistence for library directories.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open pool. The caller owns the pool and closes it.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SchemaVersion returns the applied schema revision.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// InitSchema applies every schema revision newer than the stored
// user_version, one transaction per revision.
func (s *Store) InitSchema(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	for _, rev := range schemaRevisions {
		if rev.version <= current {
			continue
		}
		if err := s.applyRevision(ctx, rev); err != nil {
			return fmt.Errorf("%w: revision %d: %v", ErrSchema, rev.version, err)
		}
	}
	return nil
}

func (s *Store) applyRevision(ctx context.Context, rev schemaRevision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range rev.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not accept bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", rev.version)); err != nil {
		return err
	}
	return tx.Commit()
}

// AddDirectory registers dir as a watched library directory. A directory
// that is already registered, or lies inside a registered one, is reported
// as AddAlreadyRegistered.
func (s *Store) AddDirectory(ctx context.Context, dir string) (AddResult, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return AddInvalidDirectory, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return AddInvalidDirectory, nil
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return AddInvalidDirectory, nil
	}

	existing, err := s.Directories(ctx)
	if err != nil {
		return 0, err
	}
	for _, d := range existing {
		if d == abs || isWithin(d, abs) {
			return AddAlreadyRegistered, nil
		}
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO directories (directory) VALUES (?)`, abs); err != nil {
		return 0, fmt.Errorf("insert directory: %w", err)
	}
	return AddOK, nil
}

// Directories lists the registered directories in insertion order.
func (s *Store) Directories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT directory FROM directories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query directories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dirs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
