package roundtrip

// #region imports
import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/ledger"
	"github.com/danielpatrickdp/falselabel/internal/logging"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"github.com/danielpatrickdp/falselabel/internal/options"
	"github.com/danielpatrickdp/falselabel/internal/telemetry"
	"github.com/google/uuid"
)

// #endregion

// #region runner-struct
// Runner drives one compress/decompress round trip through a codec and
// hands both fields to every metric plugin. Ledger and Telemetry are
// optional.
type Runner struct {
	Codec     Codec
	Plugins   []metrics.Plugin
	Ledger    *ledger.Store
	Telemetry *telemetry.Collectors
}

// Report is the outcome of one Run. A metric failure does not fail the run;
// it is recorded in Errors under the plugin prefix.
type Report struct {
	RunID           string
	Codec           string
	Dims            []int
	CompressedBytes int
	Results         options.Options
	Errors          map[string]error
}

// Status returns the host status code recorded for a plugin prefix.
func (r Report) Status(prefix string) int {
	return metrics.StatusCode(r.Errors[prefix])
}

// #endregion

// #region run
// Run compresses input, decompresses it, and collects the merged results of
// every plugin. Codec failures abort the run.
func (r *Runner) Run(input *field.Buffer) (Report, error) {
	if r.Codec == nil {
		return Report{}, fmt.Errorf("run: no codec configured")
	}
	if input == nil {
		return Report{}, fmt.Errorf("run: %w", metrics.ErrMissingInput)
	}

	rep := Report{
		RunID:   uuid.NewString(),
		Codec:   r.Codec.Name(),
		Dims:    input.Dims(),
		Results: options.Options{},
		Errors:  map[string]error{},
	}

	for _, p := range r.Plugins {
		if err := p.BeginCompress(input, nil); err != nil {
			rep.Errors[p.Prefix()] = err
		}
	}

	compressed, err := r.Codec.Compress(input)
	if err != nil {
		return rep, fmt.Errorf("compress with %s: %w", rep.Codec, err)
	}
	rep.CompressedBytes = len(compressed)

	output, err := r.Codec.Decompress(compressed, rep.Dims)
	if err != nil {
		return rep, fmt.Errorf("decompress with %s: %w", rep.Codec, err)
	}

	for _, p := range r.Plugins {
		if _, failed := rep.Errors[p.Prefix()]; failed {
			continue
		}
		if err := p.EndDecompress(input, output); err != nil {
			rep.Errors[p.Prefix()] = err
			logging.Logf("[roundtrip] run %s: %s failed: %v", rep.RunID, p.Prefix(), err)
		}
	}

	rows := r.collect(&rep)
	r.record(rep, rows)
	return rep, nil
}

// #endregion

// #region collect
// collect merges plugin results into rep and flattens them into ledger rows.
func (r *Runner) collect(rep *Report) []ledger.ResultRow {
	var rows []ledger.ResultRow
	for _, p := range r.Plugins {
		prefix := p.Prefix()
		status := rep.Status(prefix)
		res := p.Results()
		rep.Results.Merge(res)

		for _, key := range res.Keys() {
			v, ok := res.Double(key)
			rows = append(rows, ledger.ResultRow{
				MetricID: prefix,
				Key:      key,
				Value:    v,
				HasValue: ok,
				Status:   status,
			})
			if ok || status != 0 {
				r.Telemetry.RecordResult(prefix, status, v, ok)
			}
		}
	}
	return rows
}

// #endregion

// #region record
// record writes the run and one run_log row per plugin. Ledger failures are
// logged, not returned: the metric results are still valid.
func (r *Runner) record(rep Report, rows []ledger.ResultRow) {
	if r.Ledger == nil {
		return
	}
	now := time.Now().UTC()
	err := r.Ledger.RecordRun(ledger.RunRecord{
		RunID:           rep.RunID,
		Codec:           rep.Codec,
		Dims:            rep.Dims,
		CompressedBytes: rep.CompressedBytes,
		CreatedAt:       now,
		Results:         rows,
	})
	if err != nil {
		logging.Logf("[roundtrip] record run %s: %v", rep.RunID, err)
		return
	}

	for _, p := range r.Plugins {
		entry := logging.RunLogEntry{
			RunID:     rep.RunID,
			MetricID:  p.Prefix(),
			CreatedAt: now,
		}
		if err := rep.Errors[p.Prefix()]; err != nil {
			entry.Status = metrics.StatusCode(err)
			entry.Message = err.Error()
		}
		if err := logging.LogRun(r.Ledger.DB(), entry); err != nil {
			logging.Logf("[roundtrip] log run %s: %v", rep.RunID, err)
		}
	}
}

// #endregion
