// Package sqlite stores the report in a SQLite database file.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/sink"
)

const (
	Name         = "database"
	DefaultTable = "Packet"

	driverName = "sqlite"
)

// Sink inserts one row per record, committing after every row.
type Sink struct {
	path   string
	table  string
	db     *sql.DB
	insert string
	state  sink.State
}

func init() {
	sink.Register(Name, func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Path, cfg.TableName)
	})
}

// New validates table and returns a sink writing to the database at path.
func New(path, table string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("database sink requires a path")
	}
	if table == "" {
		table = DefaultTable
	}
	if !config.IsValidIdentifier(table) {
		return nil, fmt.Errorf("table name %q is not a valid SQL identifier", table)
	}
	return &Sink{
		path:   path,
		table:  table,
		insert: fmt.Sprintf(`INSERT INTO %q (TIMESTAMP, Host, Dest, Protocal, Summary, Data) VALUES (?, ?, ?, ?, ?, ?)`, table),
	}, nil
}

func (s *Sink) Name() string   { return Name }
func (s *Sink) Target() string { return s.path }

// Open opens or creates the database file and creates the table when missing.
func (s *Sink) Open() error {
	if err := s.state.Expect(sink.StateNew, "open"); err != nil {
		return err
	}

	db, err := sql.Open(driverName, s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	db.SetMaxOpenConns(1)

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (TIMESTAMP TEXT, Host TEXT, Dest TEXT, Protocal TEXT, Summary TEXT, Data BLOB)`, s.table)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	s.db = db
	s.state = sink.StateOpen
	return nil
}

// Write inserts rec in its own transaction. Empty text is stored as NULL.
func (s *Sink) Write(rec core.Record) error {
	if err := s.state.Expect(sink.StateOpen, "write"); err != nil {
		return err
	}

	var data any
	if rec.Text != "" {
		data = rec.Text
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(s.insert, rec.Timestamp, rec.Source, rec.Destination, rec.Protocol, rec.Summary, data); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit row: %w", err)
	}
	return nil
}

// Finalize closes the database. Every row is already committed.
func (s *Sink) Finalize() error {
	if err := s.state.Expect(sink.StateOpen, "finalize"); err != nil {
		return err
	}
	s.state = sink.StateFinalized
	return s.release()
}

func (s *Sink) Close() error {
	if s.state != sink.StateFinalized {
		s.state = sink.StateClosed
	}
	return s.release()
}

func (s *Sink) release() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
