package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
)

// RatioTolerance is the absolute tolerance for comparing ratios.
const RatioTolerance = 1e-12

// #region types
// Case is one recorded pair of fields with the outcome it must produce.
type Case struct {
	Name           string
	Input          *field.Buffer
	Output         *field.Buffer
	ExpectedRatio  metrics.Ratio
	ExpectedStatus int
}

// CaseResult captures what the plugin did for one Case.
type CaseResult struct {
	Name   string
	Status int
	Ratio  metrics.Ratio
	Passed bool
	Reason string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCases int
	Passed     int
	Failed     int
	ByStatus   map[int]int
}

// #endregion types

// #region replay
// Replay feeds every case through the same plugin instance, in order, so a
// case also checks that nothing leaks from the case before it.
func Replay(plugin metrics.Plugin, cases []Case) []CaseResult {
	results := make([]CaseResult, 0, len(cases))
	for _, c := range cases {
		status := metrics.StatusCode(plugin.EndDecompress(c.Input, c.Output))
		ratio := metrics.Absent()
		if v, ok := plugin.Results().Double(metrics.KeyFalseLabelRatio); ok {
			ratio = metrics.Present(v)
		}

		res := CaseResult{Name: c.Name, Status: status, Ratio: ratio, Passed: true, Reason: "ok"}
		if status != c.ExpectedStatus {
			res.Passed = false
			res.Reason = fmt.Sprintf("expected status %d, got %d", c.ExpectedStatus, status)
		} else if !sameRatio(ratio, c.ExpectedRatio) {
			res.Passed = false
			res.Reason = fmt.Sprintf("expected ratio %s, got %s", c.ExpectedRatio, ratio)
		}
		results = append(results, res)
	}
	return results
}

// ReplayFixture builds the fixture's metric from reg and replays its cases.
func ReplayFixture(reg *metrics.Registry, f *Fixture) ([]CaseResult, error) {
	plugin, err := reg.Build(f.Metric)
	if err != nil {
		return nil, err
	}
	cases, err := f.ToCases()
	if err != nil {
		return nil, err
	}
	return Replay(plugin, cases), nil
}

func sameRatio(got, want metrics.Ratio) bool {
	g, gok := got.Get()
	w, wok := want.Get()
	if gok != wok {
		return false
	}
	return !gok || math.Abs(g-w) <= RatioTolerance
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) ReplaySummary {
	s := ReplaySummary{
		TotalCases: len(results),
		ByStatus:   map[int]int{},
	}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.ByStatus[r.Status]++
	}
	return s
}

// #endregion replay
