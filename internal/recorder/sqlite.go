package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals the session to an in-memory SQLite database. The
// journal lives exactly as long as the process.
type SQLiteRecorder struct {
	// MaxCycles and MaxEvents bound the journal; older rows are pruned on
	// insert. Zero disables the bound.
	MaxCycles int64
	MaxEvents int64

	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// Default journal bounds: one day of 30s cycles.
const (
	DefaultMaxCycles = 2880
	DefaultMaxEvents = 10000
)

// NewSQLiteRecorder opens the in-memory database and creates the schema.
func NewSQLiteRecorder(log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db, log: log, MaxCycles: DefaultMaxCycles, MaxEvents: DefaultMaxEvents}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("session journal opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			ok          INTEGER,
			empty       INTEGER,
			excluded    INTEGER,
			malformed   INTEGER,
			failed      INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id         INTEGER NOT NULL REFERENCES cycles(id),
			symbol           TEXT NOT NULL,
			decision         TEXT,
			path             TEXT,
			price            REAL,
			target_price     REAL,
			stop_loss_price  REAL,
			volatility_score REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_symbol ON candidates(symbol)`,

		`CREATE TABLE IF NOT EXISTS position_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			event     TEXT,
			status    TEXT,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_events_symbol ON position_events(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO cycles
		(started_at, duration_ms, ok, empty, excluded, malformed, failed)
		VALUES (?,?,?,?,?,?,?)`,
		rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(),
		rec.OK, rec.Empty, rec.Excluded, rec.Malformed, rec.Failed,
	)
	if err != nil {
		return err
	}
	cycleID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, c := range rec.Candidates {
		if _, err := tx.Exec(`INSERT INTO candidates
			(cycle_id, symbol, decision, path, price, target_price, stop_loss_price, volatility_score)
			VALUES (?,?,?,?,?,?,?,?)`,
			cycleID, c.Symbol, c.Decision, c.Path, c.Price,
			c.TargetPrice, c.StopLossPrice, c.VolatilityScore,
		); err != nil {
			return err
		}
	}
	if r.MaxCycles > 0 && cycleID > r.MaxCycles {
		cutoff := cycleID - r.MaxCycles
		if _, err := tx.Exec(`DELETE FROM candidates WHERE cycle_id <= ?`, cutoff); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM cycles WHERE id <= ?`, cutoff); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPositionEvent(evt *PositionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO position_events
		(timestamp, symbol, event, status, price)
		VALUES (?,?,?,?,?)`,
		at.UnixMilli(), evt.Symbol, evt.Event, evt.Status, evt.Price,
	)
	if err != nil {
		return err
	}
	if r.MaxEvents <= 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if id > r.MaxEvents {
		_, err = r.db.Exec(`DELETE FROM position_events WHERE id <= ?`, id-r.MaxEvents)
	}
	return err
}

// RecentPositionEvents returns up to limit events, newest first.
func (r *SQLiteRecorder) RecentPositionEvents(limit int) ([]PositionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT timestamp, symbol, event, status, price
		FROM position_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionEvent
	for rows.Next() {
		var ms int64
		var e PositionEvent
		if err := rows.Scan(&ms, &e.Symbol, &e.Event, &e.Status, &e.Price); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// CycleCount returns the number of journaled cycles.
func (r *SQLiteRecorder) CycleCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM cycles`).Scan(&n)
	return n, err
}

// CandidateHistory returns the decisions recorded for symbol, oldest first.
func (r *SQLiteRecorder) CandidateHistory(symbol string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, err := r.db.Query(`SELECT decision FROM candidates WHERE symbol = ? ORDER BY id`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing session journal")
	return r.db.Close()
}
