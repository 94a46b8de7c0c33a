package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/falselabel/internal/config"
	"github.com/danielpatrickdp/falselabel/internal/eval"
	"github.com/danielpatrickdp/falselabel/internal/faultrpc"
	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/ledger"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"github.com/danielpatrickdp/falselabel/internal/roundtrip"
	"github.com/danielpatrickdp/falselabel/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	inputPath := flag.String("input", "", "raw little-endian sample file; synthetic field when empty")
	dimsFlag := flag.String("dims", "64x64", "field extents, fastest axis first (e.g. 64x64x16)")
	dtype := flag.String("dtype", "float64", "element type of --input: float64 or float32")
	boundsFlag := flag.String("bounds", "", "comma-separated error bounds to sweep (overrides codec.error_bound)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	dims, err := parseDims(*dimsFlag)
	if err != nil {
		usage(err)
	}
	bounds := []float64{cfg.Codec.ErrorBound}
	if *boundsFlag != "" {
		if bounds, err = parseBounds(*boundsFlag); err != nil {
			usage(err)
		}
	}

	input, err := loadInput(*inputPath, *dtype, dims)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}

	counter, closeCounter, err := buildCounter(cfg)
	if err != nil {
		log.Fatalf("fault counter: %v", err)
	}
	defer closeCounter()

	store, err := ledger.NewStore()
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	collectors := telemetry.NewCollectors(reg)

	rows, err := sweep(cfg, counter, store, collectors, input, bounds)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			log.Printf("write metrics file: %v", err)
		}
	}

	values, err := store.Values(metrics.KeyFalseLabelRatio)
	if err != nil {
		log.Fatalf("ledger values: %v", err)
	}
	summary := eval.Summarize(values)

	if *jsonOut {
		err = printJSON(struct {
			Runs    []runRow     `json:"runs"`
			Summary eval.Summary `json:"summary"`
		}{rows, summary})
	} else {
		err = printTable(rows, summary)
	}
	if err != nil {
		log.Fatalf("output: %v", err)
	}

	for _, r := range rows {
		if !r.Passed {
			os.Exit(1)
		}
	}
}

func usage(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	fmt.Fprintln(os.Stderr, "usage: evaluate [--config file.yaml] [--input raw.bin --dtype float64] [--dims 64x64] [--bounds 1e-4,1e-3] [--json]")
	os.Exit(2)
}

// #endregion main

// #region wiring

// buildCounter returns the configured fault counter and its cleanup.
func buildCounter(cfg config.Config) (faults.Counter, func(), error) {
	acc, err := faults.ParseAccelerator(cfg.FaultCounter.Accelerator)
	if err != nil {
		return nil, nil, err
	}
	if cfg.FaultCounter.Mode == "remote" {
		client, err := faultrpc.NewClient(cfg.FaultCounter.Addr, cfg.Timeout(), cfg.FaultCounter.MaxMessageBytes)
		if err != nil {
			return nil, nil, err
		}
		return faults.WithAccelerator(client, acc), func() { client.Close() }, nil
	}
	return faults.WithAccelerator(faults.NewLocal(cfg.FaultCounter.Workers), acc), func() {}, nil
}

type runRow struct {
	RunID            string   `json:"run_id"`
	ErrorBound       float64  `json:"error_bound"`
	CompressedBytes  int      `json:"compressed_bytes"`
	CompressionRatio float64  `json:"compression_ratio"`
	FalseLabelRatio  *float64 `json:"false_label_ratio"`
	Status           int      `json:"status"`
	Passed           bool     `json:"passed"`
	Reason           string   `json:"reason"`
}

// sweep runs one round trip per error bound, each with fresh plugin instances.
func sweep(cfg config.Config, counter faults.Counter, store *ledger.Store, collectors *telemetry.Collectors, input *field.Buffer, bounds []float64) ([]runRow, error) {
	reg := metrics.Builtin(counter)
	evalCfg := eval.DefaultEvalConfig()
	evalCfg.MaxFalseLabelRatio = cfg.Eval.MaxFalseLabelRatio
	harness := eval.NewEvalHarness(evalCfg)
	rawBytes := 8 * input.NumElements()
	if input.DType() == field.Float32 {
		rawBytes = 4 * input.NumElements()
	}

	rows := make([]runRow, 0, len(bounds))
	for _, bound := range bounds {
		plugins := make([]metrics.Plugin, 0, len(cfg.Metrics))
		for _, id := range cfg.Metrics {
			p, err := reg.Build(id)
			if err != nil {
				return nil, err
			}
			plugins = append(plugins, p)
		}

		runner := &roundtrip.Runner{
			Codec:     roundtrip.Quantizer{ErrorBound: bound},
			Plugins:   plugins,
			Ledger:    store,
			Telemetry: collectors,
		}
		rep, err := runner.Run(input)
		if err != nil {
			return nil, err
		}

		row := runRow{
			RunID:           rep.RunID,
			ErrorBound:      bound,
			CompressedBytes: rep.CompressedBytes,
			Status:          rep.Status(metrics.FalseLabelRatioID),
		}
		if rep.CompressedBytes > 0 {
			row.CompressionRatio = float64(rawBytes) / float64(rep.CompressedBytes)
		}
		if v, ok := rep.Results.Double(metrics.KeyFalseLabelRatio); ok {
			row.FalseLabelRatio = &v
		}
		verdict := harness.Run(rep.Results, row.CompressionRatio)
		row.Passed = verdict.Passed
		row.Reason = verdict.Reason
		rows = append(rows, row)
	}
	return rows, nil
}

// #endregion wiring

// #region input

func parseDims(s string) ([]int, error) {
	parts := strings.Split(s, "x")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 1 {
			return nil, fmt.Errorf("invalid extent %q in dims %q", p, s)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

func parseBounds(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		b, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bound %q: %w", p, err)
		}
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("invalid bound %q: must be finite", p)
		}
		out = append(out, b)
	}
	return out, nil
}

func loadInput(path, dtype string, dims []int) (*field.Buffer, error) {
	if path == "" {
		return field.NewFloat64(synthetic(dims), dims...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeRaw(data, dtype, dims)
}

// decodeRaw reads little-endian samples.
func decodeRaw(data []byte, dtype string, dims []int) (*field.Buffer, error) {
	switch dtype {
	case "float64":
		if len(data)%8 != 0 {
			return nil, fmt.Errorf("%d bytes is not a whole number of float64 samples", len(data))
		}
		out := make([]float64, len(data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
		}
		return field.NewFloat64(out, dims...)
	case "float32":
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("%d bytes is not a whole number of float32 samples", len(data))
		}
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		}
		return field.NewFloat32(out, dims...)
	}
	return nil, fmt.Errorf("dtype %q: %w", dtype, field.ErrUnsupportedType)
}

// synthetic fills a product of sines over the grid, one frequency per axis.
func synthetic(dims []int) []float64 {
	n := 1
	for _, d := range dims {
		n *= d
	}
	out := make([]float64, n)
	for i := range out {
		v, rem := 1.0, i
		for axis, d := range dims {
			c := rem % d
			rem /= d
			v *= math.Sin(float64(c)*(0.21+0.13*float64(axis)) + 0.5)
		}
		out[i] = v
	}
	return out
}

// #endregion input

// #region output

func printTable(rows []runRow, s eval.Summary) error {
	fmt.Printf("%-8s  %10s  %10s  %8s  %14s  %6s  %s\n",
		"Run", "Bound", "Bytes", "CR", "False Labels", "Status", "Verdict")
	fmt.Printf("%-8s+-%10s+-%10s+-%8s+-%14s+-%6s+-%s\n",
		"--------", "----------", "----------", "--------", "--------------", "------", "--------------------")
	for _, r := range rows {
		ratio := "absent"
		if r.FalseLabelRatio != nil {
			ratio = fmt.Sprintf("%.6f", *r.FalseLabelRatio)
		}
		verdict := "PASS"
		if !r.Passed {
			verdict = "FAIL: " + r.Reason
		}
		fmt.Printf("%-8s  %10.3g  %10d  %8.2f  %14s  %6d  %s\n",
			shortID(r.RunID), r.ErrorBound, r.CompressedBytes, r.CompressionRatio, ratio, r.Status, verdict)
	}
	if s.Count > 0 {
		fmt.Printf("\nFalse-label ratio over %d runs: mean=%.6f stddev=%.6f min=%.6f max=%.6f\n",
			s.Count, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
