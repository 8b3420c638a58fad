// Package store provides the SQLite-backed log of credit records served by
// the backend.
package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/acumon/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotObject is returned when a record is not a JSON object.
var ErrNotObject = errors.New("record must be a JSON object")

// Store is an append-only log of credit records. Records are kept verbatim
// so loosely typed values come back exactly as they were written.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening credit db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// indexed are the record keys copied into their own columns.
type indexed struct {
	Timestamp     model.Field `json:"timestamp"`
	SessionName   model.Field `json:"session_name"`
	AvailableACUs model.Field `json:"available_acus"`
	CreditUsed    model.Field `json:"credit_used"`
	CreditLimit   model.Field `json:"credit_limit"`
	ACUsUsed      model.Field `json:"acus_used"`
}

// Append stores one record and returns its id.
func (s *Store) Append(raw json.RawMessage) (int64, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return 0, ErrNotObject
	}
	var cols indexed
	if err := json.Unmarshal(raw, &cols); err != nil {
		return 0, fmt.Errorf("decoding record: %w", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return 0, fmt.Errorf("compacting record: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO credit_data
		(timestamp, session_name, available_acus, credit_used, credit_limit, acus_used, raw_json, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(cols.Timestamp), nullable(cols.SessionName), nullable(cols.AvailableACUs),
		nullable(cols.CreditUsed), nullable(cols.CreditLimit), nullable(cols.ACUsUsed),
		compact.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting record: %w", err)
	}
	return res.LastInsertId()
}

// AppendSnapshot stores a snapshot as a record.
func (s *Store) AppendSnapshot(snap model.Snapshot) (int64, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.Append(b)
}

func nullable(f model.Field) sql.NullString {
	if !f.Present() {
		return sql.NullString{}
	}
	return sql.NullString{String: f.Text(), Valid: true}
}

// Latest returns the most recently appended record, or nil when the store
// is empty.
func (s *Store) Latest() (json.RawMessage, error) {
	var raw string
	err := s.db.QueryRow("SELECT raw_json FROM credit_data ORDER BY id DESC LIMIT 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// All returns every record in insertion order.
func (s *Store) All() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT raw_json FROM credit_data ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []json.RawMessage{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		records = append(records, json.RawMessage(raw))
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM credit_data").Scan(&count)
	return count, err
}
