// Package observability records generation pipeline events in a local SQLite
// database. Event writes never propagate errors: a failing event store must
// not block or fail an animation request.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rliebert/renaissance-ink/dbopen"
	"github.com/rliebert/renaissance-ink/idgen"
)

// Schema creates the event tables. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS generation_events (
	event_id     TEXT PRIMARY KEY,
	record_id    TEXT NOT NULL DEFAULT '',
	stage        TEXT NOT NULL,
	transport    TEXT NOT NULL DEFAULT '',
	element_ids  TEXT NOT NULL DEFAULT '',
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	success      INTEGER NOT NULL DEFAULT 1,
	error        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_events_created
	ON generation_events(created_at);
CREATE INDEX IF NOT EXISTS idx_generation_events_record
	ON generation_events(record_id);
`

// GenerationEvent is one pipeline stage outcome: a preview extraction, an
// LLM generation, a splice, or a repair attempt.
type GenerationEvent struct {
	RecordID   string
	Stage      string // "preview", "generate", "splice", "repair"
	Transport  string // "http" or "mcp"
	ElementIDs string // comma-joined target ids
	Duration   time.Duration
	Success    bool
	Error      string
}

// EventLogger writes generation events and manages retention cleanup.
type EventLogger struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// WithLogger sets the slog logger used for write failures.
func WithLogger(logger *slog.Logger) EventLoggerOption {
	return func(l *EventLogger) { l.logger = logger }
}

// NewEventLogger creates a logger backed by the given database.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:     db,
		newID:  idgen.Prefixed("evt_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Init applies the event schema.
func (l *EventLogger) Init(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("observability: init schema: %w", err)
	}
	return nil
}

// LogEvent records a generation event. Non-blocking: errors are logged via
// slog but do not propagate.
func (l *EventLogger) LogEvent(ctx context.Context, event GenerationEvent) {
	success := 0
	if event.Success {
		success = 1
	}
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO generation_events (
			event_id, record_id, stage, transport, element_ids,
			duration_ms, success, error, created_at
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		l.newID(), event.RecordID, event.Stage, event.Transport, event.ElementIDs,
		event.Duration.Milliseconds(), success, event.Error, time.Now().Unix())
	if err != nil {
		l.logger.Error("generation event log failed", "error", err, "stage", event.Stage)
	}
}

// Cleanup deletes events older than retentionDays. Zero or negative retention
// is a no-op.
func (l *EventLogger) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()
	res, err := l.db.ExecContext(ctx, `DELETE FROM generation_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("observability: cleanup: %w", err)
	}
	return res.RowsAffected()
}
