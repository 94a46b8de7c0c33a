package ledger

import "time"

// #region run-record
// RunRecord is one round trip: the codec used, the field shape and every
// result key reported by the metrics that ran.
type RunRecord struct {
	RunID           string
	Codec           string
	Dims            []int
	CompressedBytes int
	CreatedAt       time.Time
	Results         []ResultRow
}

// #endregion run-record

// #region result-row
// ResultRow is one exported result key. HasValue is false for type-only
// results (metric not computed or failed).
type ResultRow struct {
	MetricID string
	Key      string
	Value    float64
	HasValue bool
	Status   int
}

// #endregion result-row
