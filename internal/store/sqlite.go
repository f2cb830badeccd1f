package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/accident-risk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck,gosec
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS derivation_runs (
	id                   TEXT PRIMARY KEY,
	dataset              TEXT NOT NULL,
	records_read         INTEGER NOT NULL,
	records_used         INTEGER NOT NULL,
	locations            INTEGER NOT NULL,
	accident_prone_count INTEGER NOT NULL,
	threshold            INTEGER NOT NULL,
	metadata             TEXT NOT NULL,
	started_at           DATETIME NOT NULL,
	finished_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS run_locations (
	run_id              TEXT NOT NULL REFERENCES derivation_runs(id) ON DELETE CASCADE,
	position            INTEGER NOT NULL,
	location_key        TEXT NOT NULL,
	barangay            TEXT NOT NULL,
	station             TEXT NOT NULL,
	total_accidents     INTEGER NOT NULL,
	fatal_accidents     INTEGER NOT NULL,
	is_accident_prone   BOOLEAN NOT NULL,
	most_common_offense TEXT NOT NULL,
	PRIMARY KEY (run_id, location_key)
);

CREATE INDEX IF NOT EXISTS idx_derivation_runs_started_at ON derivation_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_derivation_runs_dataset ON derivation_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_run_locations_run_position ON run_locations(run_id, position);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run *model.DerivationRun, table model.LocationTable) error {
	if run == nil {
		return eris.New("sqlite: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	metaJSON, err := json.Marshal(run.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metadata")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO derivation_runs (id, dataset, records_read, records_used, locations,
			accident_prone_count, threshold, metadata, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.RecordsRead, run.RecordsUsed, run.Locations,
		run.AccidentProneCount, run.Threshold, string(metaJSON),
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_locations (run_id, position, location_key, barangay, station,
			total_accidents, fatal_accidents, is_accident_prone, most_common_offense)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare location insert")
	}
	defer stmt.Close() //nolint:errcheck

	for pos, key := range table.Statistics.Keys() {
		st, _ := table.Statistics.Get(key)
		if _, err := stmt.ExecContext(ctx,
			run.ID, pos, key, st.Barangay, st.Station,
			st.TotalAccidents, st.FatalAccidents, st.IsAccidentProne, st.MostCommonOffense,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert location %q", key)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

const runColumns = `id, dataset, records_read, records_used, locations,
	accident_prone_count, threshold, metadata, started_at, finished_at`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.DerivationRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM derivation_runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.DerivationRun, error) {
	query := `SELECT ` + runColumns + ` FROM derivation_runs WHERE 1=1`
	var args []any

	if filter.Dataset != "" {
		query += ` AND dataset = ?`
		args = append(args, filter.Dataset)
	}
	if !filter.StartedAfter.IsZero() {
		query += ` AND started_at > ?`
		args = append(args, filter.StartedAfter.UTC())
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.DerivationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) RunLocations(ctx context.Context, runID string, proneOnly bool) ([]model.LocationStats, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	query := `SELECT barangay, station, total_accidents, fatal_accidents, is_accident_prone, most_common_offense
		FROM run_locations WHERE run_id = ?`
	if proneOnly {
		query += ` AND is_accident_prone`
	}
	query += ` ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list locations for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LocationStats
	for rows.Next() {
		var st model.LocationStats
		if err := rows.Scan(&st.Barangay, &st.Station, &st.TotalAccidents, &st.FatalAccidents,
			&st.IsAccidentProne, &st.MostCommonOffense); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan location")
		}
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list locations iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.DerivationRun, error) {
	var r model.DerivationRun
	var metaJSON string
	var started, finished time.Time

	err := row.Scan(&r.ID, &r.Dataset, &r.RecordsRead, &r.RecordsUsed, &r.Locations,
		&r.AccidentProneCount, &r.Threshold, &metaJSON, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(metaJSON), &r.Metadata); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metadata")
	}
	r.StartedAt = started.UTC()
	r.FinishedAt = finished.UTC()
	return &r, nil
}
