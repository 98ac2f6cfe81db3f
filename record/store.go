// Package record persists animation generation records in SQLite. Each record
// keeps the untouched original document, the request inputs, the conversation
// transcript and either the animated result or the failure message.
package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rliebert/renaissance-ink/dbopen"
	"github.com/rliebert/renaissance-ink/idgen"
	"github.com/rliebert/renaissance-ink/llm"
)

// ErrNotFound is returned by Latest and Get when no record matches.
var ErrNotFound = errors.New("record: not found")

// Schema creates the record table. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS animation_records (
	record_id     TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	original_svg  TEXT NOT NULL,
	description   TEXT NOT NULL,
	selected_ids  TEXT NOT NULL DEFAULT '[]',
	reference_ids TEXT NOT NULL DEFAULT '[]',
	animated_svg  TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	parameters    TEXT NOT NULL DEFAULT '{}',
	transcript    TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_animation_records_created
	ON animation_records(created_at);
`

// Record is one generation attempt, successful or not. The original document
// is stored untouched so a failed generation never loses user input.
type Record struct {
	RecordID     string
	CreatedAt    time.Time
	OriginalSVG  string
	Description  string
	SelectedIDs  []string
	ReferenceIDs []string
	AnimatedSVG  string
	Error        string
	Parameters   llm.Parameters
	Transcript   []llm.Turn
}

// Store reads and writes animation records.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewStore creates a Store over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		newID: idgen.Prefixed("rec_", idgen.Default),
	}
}

// Init applies the record schema.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("record: init schema: %w", err)
	}
	return nil
}

// Save persists a record, assigning RecordID and CreatedAt if unset.
func (s *Store) Save(ctx context.Context, r *Record) error {
	if r.RecordID == "" {
		r.RecordID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	selected, err := json.Marshal(emptySlice(r.SelectedIDs))
	if err != nil {
		return fmt.Errorf("record: marshal selected_ids: %w", err)
	}
	reference, err := json.Marshal(emptySlice(r.ReferenceIDs))
	if err != nil {
		return fmt.Errorf("record: marshal reference_ids: %w", err)
	}
	params, err := json.Marshal(r.Parameters)
	if err != nil {
		return fmt.Errorf("record: marshal parameters: %w", err)
	}
	transcript, err := json.Marshal(emptyTurns(r.Transcript))
	if err != nil {
		return fmt.Errorf("record: marshal transcript: %w", err)
	}

	err = dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO animation_records (
				record_id, created_at, original_svg, description,
				selected_ids, reference_ids, animated_svg, error,
				parameters, transcript
			) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			r.RecordID, r.CreatedAt.Unix(), r.OriginalSVG, r.Description,
			string(selected), string(reference), r.AnimatedSVG, r.Error,
			string(params), string(transcript))
		return err
	})
	if err != nil {
		return fmt.Errorf("record: save: %w", err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, recordID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM animation_records WHERE record_id = ?`, recordID)
	return scanRecord(row)
}

// Latest returns the most recently created record.
func (s *Store) Latest(ctx context.Context) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM animation_records ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanRecord(row)
}

const selectColumns = `
	SELECT record_id, created_at, original_svg, description,
		selected_ids, reference_ids, animated_svg, error,
		parameters, transcript`

func scanRecord(row *sql.Row) (*Record, error) {
	var r Record
	var createdAt int64
	var selected, reference, params, transcript string

	err := row.Scan(&r.RecordID, &createdAt, &r.OriginalSVG, &r.Description,
		&selected, &reference, &r.AnimatedSVG, &r.Error,
		&params, &transcript)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("record: scan: %w", err)
	}

	r.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal([]byte(selected), &r.SelectedIDs); err != nil {
		return nil, fmt.Errorf("record: decode selected_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(reference), &r.ReferenceIDs); err != nil {
		return nil, fmt.Errorf("record: decode reference_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &r.Parameters); err != nil {
		return nil, fmt.Errorf("record: decode parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(transcript), &r.Transcript); err != nil {
		return nil, fmt.Errorf("record: decode transcript: %w", err)
	}
	return &r, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyTurns(t []llm.Turn) []llm.Turn {
	if t == nil {
		return []llm.Turn{}
	}
	return t
}
