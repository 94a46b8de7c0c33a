package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
)

// #region fixture-tests

// TestFixture_Basic loads the basic fixture, replays it through the builtin
// registry with the local counter, and checks every case. This is the primary
// regression test: if classification or status mapping drifts, this catches it.
func TestFixture_Basic(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "basic.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, err := ReplayFixture(metrics.Builtin(faults.NewLocal(1)), f)
	if err != nil {
		t.Fatalf("ReplayFixture: %v", err)
	}
	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for i, r := range results {
		if r.Name != f.Cases[i].Name {
			t.Errorf("case %d: expected name=%s, got %s", i, f.Cases[i].Name, r.Name)
		}
		if !r.Passed {
			t.Errorf("case %d (%s): %s", i, r.Name, r.Reason)
		}
	}

	s := Summarize(results)
	if s.Failed != 0 {
		t.Errorf("expected no failures, got %d", s.Failed)
	}
	t.Logf("basic fixture: %d cases, statuses %v", s.TotalCases, s.ByStatus)
}

func TestLoadFixture_Errors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFixture_DefaultMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nometric.json")
	if err := os.WriteFile(path, []byte(`{"cases": []}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Metric != metrics.FalseLabelRatioID {
		t.Errorf("expected default metric, got %q", f.Metric)
	}
}

func TestToCase(t *testing.T) {
	ratio := 0.5
	fc := FixtureCase{
		Name:          "f32",
		DType:         "float32",
		Dims:          []int{2},
		Original:      []float64{1, 2},
		Reconstructed: nil,
		ExpectedRatio: &ratio,
	}
	c, err := fc.ToCase()
	if err != nil {
		t.Fatalf("ToCase: %v", err)
	}
	if c.Input == nil || c.Input.DType() != field.Float32 {
		t.Errorf("expected float32 input, got %+v", c.Input)
	}
	if c.Output != nil {
		t.Error("expected nil output for null reconstruction")
	}
	if v, ok := c.ExpectedRatio.Get(); !ok || v != 0.5 {
		t.Errorf("expected ratio 0.5, got %s", c.ExpectedRatio)
	}
}

func TestToCase_Errors(t *testing.T) {
	cases := map[string]FixtureCase{
		"bad dtype":    {Name: "x", DType: "int8", Dims: []int{1}, Original: []float64{1}},
		"dims too big": {Name: "x", Dims: []int{3}, Original: []float64{1, 2}},
	}
	for name, fc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := fc.ToCase(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// #endregion fixture-tests
