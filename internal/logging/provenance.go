package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-run
// LogRun writes a run log entry to the run_log table.
func LogRun(db *sql.DB, entry RunLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO run_log (run_id, metric_id, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.MetricID,
		entry.Status,
		nullIfEmpty(entry.Message),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}

// #endregion log-run

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
