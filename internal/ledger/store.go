package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	codec            TEXT NOT NULL,
	dims             TEXT NOT NULL,
	compressed_bytes INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	result_key TEXT NOT NULL,
	value      REAL,
	status     INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS run_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	status     INTEGER NOT NULL,
	message    TEXT,
	created_at TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store keeps the results of every round trip of this process in an
// in-memory SQLite database. Nothing outlives the process.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a private in-memory database and creates the schema.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the database and discards its contents.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region record-run
// RecordRun inserts a run and its result rows atomically.
func (s *Store) RecordRun(rec RunRecord) error {
	dimsJSON, err := json.Marshal(rec.Dims)
	if err != nil {
		return fmt.Errorf("marshal dims: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, codec, dims, compressed_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Codec, string(dimsJSON), rec.CompressedBytes, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range rec.Results {
		var value interface{}
		if r.HasValue {
			value = r.Value
		}
		_, err = tx.Exec(
			`INSERT INTO results (run_id, metric_id, result_key, value, status)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.RunID, r.MetricID, r.Key, value, r.Status,
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}

// #endregion record-run

// #region get-run
// GetRun retrieves a run and its results by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	var rec RunRecord
	var dimsJSON, createdStr string

	err := s.db.QueryRow(
		`SELECT run_id, codec, dims, compressed_bytes, created_at FROM runs WHERE run_id = ?`, id,
	).Scan(&rec.RunID, &rec.Codec, &dimsJSON, &rec.CompressedBytes, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(dimsJSON), &rec.Dims); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal dims: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	rec.Results, err = s.results(id)
	if err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

func (s *Store) results(runID string) ([]ResultRow, error) {
	rows, err := s.db.Query(
		`SELECT metric_id, result_key, value, status FROM results WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		var value sql.NullFloat64
		if err := rows.Scan(&r.MetricID, &r.Key, &value, &r.Status); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Value, r.HasValue = value.Float64, value.Valid
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion get-run

// #region list-runs
// ListRuns returns up to limit runs in insertion order, results included.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`SELECT run_id FROM runs ORDER BY rowid LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRun(id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// #endregion list-runs

// #region values
// Values returns every present value recorded under key, oldest first.
func (s *Store) Values(key string) ([]float64, error) {
	rows, err := s.db.Query(
		`SELECT value FROM results WHERE result_key = ? AND value IS NOT NULL ORDER BY id`, key,
	)
	if err != nil {
		return nil, fmt.Errorf("list values: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// #endregion values
