package eval

// #region eval-config
// EvalConfig holds the acceptance thresholds for one round trip.
type EvalConfig struct {
	MaxFalseLabelRatio  float64 // reject if the ratio exceeds this
	RequirePresent      bool    // reject if the ratio was not computed
	MinCompressionRatio float64 // warn if the codec compresses less than this
}

// DefaultEvalConfig returns the defaults used by cmd/evaluate.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxFalseLabelRatio:  0.01,
		RequirePresent:      true,
		MinCompressionRatio: 1.0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single check.
type EvalMetric struct {
	Name    string
	Value   float64
	Present bool
	Pass    bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the verdict for one round trip.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result

// #region summary
// Summary describes a series of ratios across runs.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// #endregion summary
