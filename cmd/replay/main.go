package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faultrpc"
	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/logging"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
	"github.com/danielpatrickdp/falselabel/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	counterAddr := flag.String("counter-addr", "", "faultd address; empty counts in process")
	timeout := flag.Duration("timeout", 30*time.Second, "per-call timeout for remote counting")
	quiet := flag.Bool("quiet", false, "suppress diagnostic logging")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--counter-addr host:port]")
		os.Exit(2)
	}
	if *quiet {
		logging.SetLogger(nil)
	}

	os.Exit(runFixtureMode(*fixturePath, *counterAddr, *timeout))
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path, counterAddr string, timeout time.Duration) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	var counter faults.Counter = faults.NewLocal(0)
	if counterAddr != "" {
		client, err := faultrpc.NewClient(counterAddr, timeout, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect to %s: %v\n", counterAddr, err)
			return 2
		}
		defer client.Close()
		counter = client
	}

	results, err := replay.ReplayFixture(metrics.Builtin(counter), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(results)
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns exit code.
func printComparison(results []replay.CaseResult) int {
	fmt.Printf("%-24s| %-7s| %-22s| %s\n", "Case", "Status", "Ratio", "Match")
	fmt.Printf("%-24s+%-7s+%-22s+%s\n",
		"------------------------", "--------", "-----------------------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Passed {
			match = "DIFF (" + r.Reason + ")"
		}
		fmt.Printf("%-24s| %-7d| %-22s| %s\n", r.Name, r.Status, r.Ratio, match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", s.TotalCases, s.Passed, s.Failed)

	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion output
