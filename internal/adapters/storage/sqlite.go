package storage

// sqlite.go: historial de corridas.
//
// Esquema:
//   - `runs`: una fila por corrida (seed, trials, modo, tamaño de muestra).
//   - `scenarios`: resumen de cada distribución simulada.
//   - `probabilities`: una fila por comparación, incluidas las saltadas.
//   - Prune automático al arrancar: corridas > 180d.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/poolsim/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id       TEXT PRIMARY KEY,
    created_at   DATETIME NOT NULL,
    seed         TEXT     NOT NULL,
    trial_count  INTEGER  NOT NULL,
    mode         TEXT     NOT NULL,
    sample_size  INTEGER  NOT NULL,
    sample_mean  REAL     NOT NULL DEFAULT 0,
    failures     INTEGER  NOT NULL DEFAULT 0,
    duration_ms  INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scenarios (
    run_id         TEXT    NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    scenario_id    TEXT    NOT NULL,
    pool_size      INTEGER NOT NULL,
    combine_with   INTEGER NOT NULL DEFAULT 0,
    fee_multiplier REAL    NOT NULL DEFAULT 0,
    block_count    INTEGER NOT NULL,
    min_reward     REAL    NOT NULL,
    max_reward     REAL    NOT NULL,
    mean_reward    REAL    NOT NULL,
    median_reward  REAL    NOT NULL,
    stddev         REAL    NOT NULL,
    PRIMARY KEY (run_id, scenario_id)
);

CREATE TABLE IF NOT EXISTS probabilities (
    run_id        TEXT    NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    comparison_id TEXT    NOT NULL,
    family        TEXT    NOT NULL,
    pool_size     INTEGER NOT NULL,
    candidate_id  TEXT    NOT NULL,
    reference_id  TEXT    NOT NULL,
    probability   REAL,
    skip_reason   TEXT,
    PRIMARY KEY (run_id, comparison_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_at ON runs(created_at DESC);
`

const retentionRuns = 180 * 24 * time.Hour

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste la corrida completa en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, r domain.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	// seed como texto: uint64 no entra en INTEGER (int64) de SQLite
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, seed, trial_count, mode, sample_size, sample_mean, failures, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedAt.UTC(), strconv.FormatUint(r.Seed, 10), r.TrialCount, string(r.Mode),
		r.Sample.Size, r.Sample.Mean, len(r.Failures), r.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	scStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scenarios
			(run_id, scenario_id, pool_size, combine_with, fee_multiplier, block_count,
			 min_reward, max_reward, mean_reward, median_reward, stddev)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare scenarios: %w", err)
	}
	defer scStmt.Close()

	for id, sc := range r.Scenarios {
		if _, err := scStmt.ExecContext(ctx,
			r.RunID, id, sc.Spec.PoolSize, sc.Spec.CombineWith, sc.Spec.FeeMultiplier, sc.BlockCount,
			sc.Summary.Min, sc.Summary.Max, sc.Summary.Mean, sc.Summary.Median, sc.Summary.StdDev,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert scenario %s: %w", id, err)
		}
	}

	prStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO probabilities
			(run_id, comparison_id, family, pool_size, candidate_id, reference_id, probability, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare probabilities: %w", err)
	}
	defer prStmt.Close()

	for _, c := range r.Comparisons {
		var prob, reason any
		if c.Skipped {
			reason = c.Reason
		} else {
			prob = c.Probability
		}
		if _, err := prStmt.ExecContext(ctx,
			r.RunID, c.ID, c.Family, c.PoolSize, c.CandidateID, c.ReferenceID, prob, reason,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert comparison %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns devuelve las últimas corridas, más recientes primero.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.created_at, r.seed, r.trial_count, r.mode, r.sample_size, r.failures,
		       (SELECT COUNT(*) FROM probabilities p WHERE p.run_id = r.run_id)
		FROM runs r
		ORDER BY r.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var createdAt, seed, mode string
		if err := rows.Scan(
			&rec.RunID,
			&createdAt,
			&seed,
			&rec.TrialCount,
			&mode,
			&rec.SampleSize,
			&rec.Failures,
			&rec.Comparisons,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		rec.Seed, _ = strconv.ParseUint(seed, 10, 64)
		rec.Mode = domain.ComparisonMode(mode)
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetProbabilities devuelve las probabilidades no saltadas de una corrida.
func (s *SQLiteStorage) GetProbabilities(ctx context.Context, runID string) (domain.ProbabilityResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT comparison_id, probability FROM probabilities WHERE run_id = ? AND probability IS NOT NULL`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetProbabilities: query: %w", err)
	}
	defer rows.Close()

	out := make(domain.ProbabilityResult)
	for rows.Next() {
		var id string
		var p float64
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("storage.GetProbabilities: scan row: %w", err)
		}
		out[id] = p
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// parseTime acepta RFC3339 (time.Time escaneado a string por database/sql) y el
// formato de texto con el que el driver guarda DATETIME.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// pruneOld elimina corridas viejas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		slog.Warn("prune old runs failed", "err", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Debug("pruned old runs", "rows", n)
	}
}
