// Package journal bundles the tick-journal stage: one row per visited pass,
// persisted to SQLite so a run can be inspected after the host exits.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/stagehand-run/stagehand/internal/capability"
	"github.com/stagehand-run/stagehand/internal/logging"
	"github.com/stagehand-run/stagehand/internal/stage"
	"github.com/stagehand-run/stagehand/internal/stages/pulse"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tick_journal (
	run_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	clock_tick INTEGER,
	written_at TEXT    NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Stage appends one journal row per forward pass. Attach opens the database
// and applies the schema; detach flushes and closes it. When a pulse clock is
// visible in the registry its tick is recorded alongside the row.
type Stage struct {
	stage.Base

	path  string
	runID string
	seq   int64

	db *sql.DB
}

func New(path string) *Stage {
	return &Stage{path: path}
}

// RunID identifies this stage's run in the journal table.
func (s *Stage) RunID() string { return s.runID }

func (s *Stage) Attach(stage.Resolver) error {
	s.runID = uuid.NewString()

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("journal open (%s): %w", s.path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("journal schema: %w", err)
	}
	s.db = db

	lg := logging.Component("journal")
	lg.Debug().
		Str("run_id", s.runID).
		Str("path", s.path).
		Msg("journal_attached")
	return nil
}

func (s *Stage) Enter(caps *capability.Registry, next stage.Walker) {
	var clockTick sql.NullInt64
	if clock, ok := capability.Get[*pulse.Clock](caps); ok {
		clockTick = sql.NullInt64{Int64: int64(clock.Tick), Valid: true}
	}

	s.seq++
	_, err := s.db.Exec(
		`INSERT INTO tick_journal (run_id, seq, clock_tick, written_at) VALUES (?, ?, ?, ?)`,
		s.runID, s.seq, clockTick, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		lg := logging.Component("journal")
		lg.Error().Err(err).Int64("seq", s.seq).Msg("journal_write_failed")
	}

	next.Next(caps)
}

func (s *Stage) Detach() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		lg := logging.Component("journal")
		lg.Error().Err(err).Msg("journal_close_failed")
	}
	s.db = nil
}

// Rows reports how many journal rows this stage has written so far. It reads
// through the open database handle, so it is only valid while attached.
func (s *Stage) Rows() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("journal not attached")
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tick_journal WHERE run_id = ?`, s.runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
