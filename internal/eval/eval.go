package eval

import (
	"fmt"

	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"github.com/danielpatrickdp/falselabel/internal/options"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// #region eval-harness
// EvalHarness judges the results of a round trip against fixed thresholds.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks merged plugin results. compressionRatio is raw bytes over
// compressed bytes; pass 0 when unknown.
func (h *EvalHarness) Run(results options.Options, compressionRatio float64) EvalResult {
	var checks []EvalMetric
	passed := true
	var failReasons []string

	// 1. Ratio must be present
	ratio, present := results.Double(metrics.KeyFalseLabelRatio)
	presentPass := present || !h.config.RequirePresent
	checks = append(checks, EvalMetric{
		Name:    "false_label_ratio_present",
		Present: present,
		Pass:    presentPass,
	})
	if !presentPass {
		passed = false
		failReasons = append(failReasons, "false label ratio was not computed")
	}

	// 2. Ratio bound
	if present {
		ratioPass := ratio <= h.config.MaxFalseLabelRatio
		checks = append(checks, EvalMetric{
			Name:    "false_label_ratio",
			Value:   ratio,
			Present: true,
			Pass:    ratioPass,
		})
		if !ratioPass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("false label ratio %.6f exceeds %.6f", ratio, h.config.MaxFalseLabelRatio))
		}
	}

	// 3. Compression ratio: informational, does not fail
	if compressionRatio > 0 {
		checks = append(checks, EvalMetric{
			Name:    "compression_ratio",
			Value:   compressionRatio,
			Present: true,
			Pass:    compressionRatio >= h.config.MinCompressionRatio,
		})
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: checks,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region summarize
// Summarize reduces a series of values. An empty series yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

// #endregion summarize
