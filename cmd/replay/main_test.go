package main

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faultrpc"
	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/logging"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"github.com/danielpatrickdp/falselabel/internal/replay"
)

var basicFixture = filepath.Join("..", "..", "internal", "replay", "testdata", "basic.json")

func quiet(t *testing.T) {
	t.Helper()
	logging.SetLogger(nil)
}

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// #region output-tests

func TestPrintComparison_ExitCode(t *testing.T) {
	pass := replay.CaseResult{Name: "a", Ratio: metrics.Present(0), Passed: true, Reason: "ok"}
	fail := replay.CaseResult{Name: "b", Status: faults.StatusSizeMismatch, Ratio: metrics.Absent(), Reason: "expected status 0, got 4"}

	cases := []struct {
		name    string
		results []replay.CaseResult
		want    int
	}{
		{"empty", nil, 0},
		{"all match", []replay.CaseResult{pass, pass}, 0},
		{"one diverges", []replay.CaseResult{pass, fail}, 1},
		{"all diverge", []replay.CaseResult{fail}, 1},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := printComparison(tt.results); got != tt.want {
				t.Errorf("expected exit %d, got %d", tt.want, got)
			}
		})
	}
}

// #endregion output-tests

// #region fixture-mode-tests

func TestRunFixtureMode_Local(t *testing.T) {
	quiet(t)
	if code := runFixtureMode(basicFixture, "", time.Second); code != 0 {
		t.Errorf("expected exit 0 for basic fixture, got %d", code)
	}
}

func TestRunFixtureMode_Divergence(t *testing.T) {
	quiet(t)
	path := writeFixture(t, `{
  "cases": [
    {"name": "wrong_ratio", "dims": [2], "original": [0, 1], "reconstructed": [0, 1], "expected_ratio": 0.5}
  ]
}`)
	if code := runFixtureMode(path, "", time.Second); code != 1 {
		t.Errorf("expected exit 1 for divergent case, got %d", code)
	}
}

func TestRunFixtureMode_Errors(t *testing.T) {
	quiet(t)
	if code := runFixtureMode(filepath.Join(t.TempDir(), "missing.json"), "", time.Second); code != 2 {
		t.Errorf("missing fixture: expected exit 2, got %d", code)
	}
	unknown := writeFixture(t, `{"metric": "no_such_metric", "cases": []}`)
	if code := runFixtureMode(unknown, "", time.Second); code != 2 {
		t.Errorf("unknown metric: expected exit 2, got %d", code)
	}
}

func TestRunFixtureMode_Remote(t *testing.T) {
	quiet(t)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := faultrpc.NewGRPCServer(faultrpc.NewServer(faults.NewLocal(1)), 0)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	if code := runFixtureMode(basicFixture, lis.Addr().String(), 5*time.Second); code != 0 {
		t.Errorf("expected exit 0 through faultd, got %d", code)
	}
}

// #endregion fixture-mode-tests
