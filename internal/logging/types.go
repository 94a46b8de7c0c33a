package logging

import "time"

// #region run-log-entry
// RunLogEntry is a single row in the run_log table: the outcome of one
// metric for one round trip.
type RunLogEntry struct {
	RunID     string
	MetricID  string
	Status    int // 0 on success, host status code otherwise
	Message   string
	CreatedAt time.Time
}

// #endregion run-log-entry
