package replay

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
)

// fixedCounter returns the same counts for every request.
type fixedCounter struct{ counts faults.Counts }

func (c fixedCounter) CountFaults(_ context.Context, _ faults.Request) (faults.Counts, error) {
	return c.counts, nil
}

// helper: 1D buffer over vals.
func line(t *testing.T, vals ...float64) *field.Buffer {
	t.Helper()
	b, err := field.NewFloat64(vals, len(vals))
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	return b
}

func TestReplay_Pass(t *testing.T) {
	plugin := metrics.NewFalseLabelRatio(fixedCounter{faults.Counts{FalseLabels: 1}})
	cases := []Case{{
		Name:          "quarter",
		Input:         line(t, 0, 1, 2, 3),
		Output:        line(t, 0, 1, 2, 3),
		ExpectedRatio: metrics.Present(0.25),
	}}

	results := Replay(plugin, cases)

	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("expected pass, got %+v", results)
	}
}

func TestReplay_StatusMismatch(t *testing.T) {
	plugin := metrics.NewFalseLabelRatio(fixedCounter{})
	cases := []Case{{
		Name:          "missing",
		Input:         line(t, 0, 1),
		ExpectedRatio: metrics.Present(0),
	}}

	r := Replay(plugin, cases)[0]

	if r.Passed {
		t.Fatal("expected failure")
	}
	if r.Status != metrics.StatusMissingInput {
		t.Errorf("expected status 1, got %d", r.Status)
	}
	if r.Reason != "expected status 0, got 1" {
		t.Errorf("unexpected reason %q", r.Reason)
	}
}

func TestReplay_RatioMismatch(t *testing.T) {
	plugin := metrics.NewFalseLabelRatio(fixedCounter{faults.Counts{FalseLabels: 1}})
	cases := []Case{{
		Name:          "off",
		Input:         line(t, 0, 1),
		Output:        line(t, 0, 1),
		ExpectedRatio: metrics.Present(0.25),
	}}

	r := Replay(plugin, cases)[0]

	if r.Passed {
		t.Fatal("expected failure on ratio 0.5 vs 0.25")
	}
	if v, _ := r.Ratio.Get(); v != 0.5 {
		t.Errorf("expected recorded ratio 0.5, got %s", r.Ratio)
	}
}

// A failing case after a passing one must not see the earlier ratio.
func TestReplay_NoLeakBetweenCases(t *testing.T) {
	plugin := metrics.NewFalseLabelRatio(fixedCounter{})
	cases := []Case{
		{Name: "ok", Input: line(t, 0, 1), Output: line(t, 0, 1), ExpectedRatio: metrics.Present(0)},
		{Name: "missing", Input: line(t, 0, 1), ExpectedRatio: metrics.Absent(), ExpectedStatus: metrics.StatusMissingInput},
	}

	for _, r := range Replay(plugin, cases) {
		if !r.Passed {
			t.Errorf("%s: %s", r.Name, r.Reason)
		}
	}
}

func TestReplayFixture_UnknownMetric(t *testing.T) {
	f := &Fixture{Metric: "nope"}
	if _, err := ReplayFixture(metrics.Builtin(fixedCounter{}), f); err == nil {
		t.Error("expected unknown metric error")
	}
}

func TestSummarize(t *testing.T) {
	results := []CaseResult{
		{Name: "a", Status: 0, Passed: true},
		{Name: "b", Status: 0, Passed: true},
		{Name: "c", Status: 1, Passed: false},
		{Name: "d", Status: 4, Passed: true},
	}

	s := Summarize(results)

	if s.TotalCases != 4 || s.Passed != 3 || s.Failed != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.ByStatus[0] != 2 || s.ByStatus[1] != 1 || s.ByStatus[4] != 1 {
		t.Errorf("unexpected status counts %v", s.ByStatus)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalCases != 0 || s.Passed != 0 || s.Failed != 0 || len(s.ByStatus) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}
