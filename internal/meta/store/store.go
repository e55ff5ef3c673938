// Package store persists meta-selector state across process restarts:
// strategy counters, the attempt history, and the rendered code of learned
// programs. Callables are not serializable, so re-registering a learned
// program requires re-compiling from its code string; the store only keeps
// what can round-trip.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"eidos/internal/logging"
	"eidos/internal/meta"
)

// Store wraps the SQLite database holding selector snapshots.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database under <dir>/.eidos/strategies.db.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, ".eidos", "strategies.db")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open strategies database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logging.Store("strategy store opened: %s", path)
	return s, nil
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS strategies (
		name TEXT PRIMARY KEY,
		success_count INTEGER DEFAULT 0,
		failure_count INTEGER DEFAULT 0,
		total_time_ms INTEGER DEFAULT 0,
		avg_program_size REAL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		signature TEXT NOT NULL,
		strategy TEXT NOT NULL,
		success INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		program_size INTEGER DEFAULT 0,
		err TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_signature ON attempts(signature);
	CREATE INDEX IF NOT EXISTS idx_attempts_strategy ON attempts(strategy);

	CREATE TABLE IF NOT EXISTS learned_programs (
		name TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		cost INTEGER NOT NULL,
		generalizes INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot upserts every registered strategy's counters.
func (s *Store) SaveSnapshot(sel *meta.Selector) error {
	for _, st := range sel.Snapshot() {
		_, err := s.db.Exec(`
			INSERT INTO strategies (name, success_count, failure_count, total_time_ms, avg_program_size, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				success_count = excluded.success_count,
				failure_count = excluded.failure_count,
				total_time_ms = excluded.total_time_ms,
				avg_program_size = excluded.avg_program_size,
				updated_at = excluded.updated_at`,
			st.Name, st.SuccessCount, st.FailureCount,
			st.TotalTime.Milliseconds(), st.AvgProgramSize, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to save strategy %q: %w", st.Name, err)
		}
	}
	return nil
}

// LoadStats restores persisted counters into the selector's registered
// strategies. Rows for strategies no longer registered (e.g. hybrids whose
// callables died with the last process) are skipped and logged.
func (s *Store) LoadStats(sel *meta.Selector) error {
	rows, err := s.db.Query(`
		SELECT name, success_count, failure_count, total_time_ms, avg_program_size
		FROM strategies`)
	if err != nil {
		return fmt.Errorf("failed to load strategies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st meta.StrategyStats
		var totalMs int64
		if err := rows.Scan(&st.Name, &st.SuccessCount, &st.FailureCount, &totalMs, &st.AvgProgramSize); err != nil {
			return fmt.Errorf("failed to scan strategy row: %w", err)
		}
		st.TotalTime = time.Duration(totalMs) * time.Millisecond
		if err := sel.RestoreStats(st); err != nil {
			logging.Store("skipping persisted stats for unregistered strategy %q", st.Name)
		}
	}
	return rows.Err()
}

// RecordAttempt appends one attempt to the durable history.
func (s *Store) RecordAttempt(a meta.Attempt) error {
	_, err := s.db.Exec(`
		INSERT INTO attempts (id, signature, strategy, success, elapsed_ms, program_size, err)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Signature, a.Strategy, boolToInt(a.Success),
		a.Elapsed.Milliseconds(), a.ProgramSize, a.Err,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// AttemptCount returns the number of persisted attempts.
func (s *Store) AttemptCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return n, nil
}

// LearnedProgram is the serializable face of a synthesized program.
type LearnedProgram struct {
	Name        string
	Code        string
	Cost        int
	Generalizes bool
	CreatedAt   time.Time
}

// SaveLearnedProgram persists the rendered code of a learned program under
// its registered primitive name.
func (s *Store) SaveLearnedProgram(name, code string, cost int, generalizes bool) error {
	_, err := s.db.Exec(`
		INSERT INTO learned_programs (name, code, cost, generalizes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		name, code, cost, boolToInt(generalizes),
	)
	if err != nil {
		return fmt.Errorf("failed to save learned program %q: %w", name, err)
	}
	return nil
}

// LearnedPrograms returns every persisted learned program, oldest first.
func (s *Store) LearnedPrograms() ([]LearnedProgram, error) {
	rows, err := s.db.Query(`
		SELECT name, code, cost, generalizes, created_at
		FROM learned_programs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load learned programs: %w", err)
	}
	defer rows.Close()

	var out []LearnedProgram
	for rows.Next() {
		var lp LearnedProgram
		var gen int
		if err := rows.Scan(&lp.Name, &lp.Code, &lp.Cost, &gen, &lp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan learned program row: %w", err)
		}
		lp.Generalizes = gen != 0
		out = append(out, lp)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
