package main

import (
	"math"
	"testing"
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/variantid"
)

func TestBuildSummaryPartitionsRows(t *testing.T) {
	parse := func(raw string) rowState {
		id, err := variantid.Parse(raw)
		return rowState{ID: id, Err: err}
	}

	rows := []rowState{
		parse("rs1"),      // passes the threshold
		parse("rs2"),      // fails the threshold
		parse("rs3"),      // unknown to AGVD
		parse("rs4"),      // batch failed
		parse("garbage!"), // never parsed
		parse("rs1"),      // duplicate row, still counted per row
	}

	results := map[string]agvd.VariantResult{
		"rs1": {
			VariantID:  "rs1",
			AfricanMAF: null.FloatFrom(0.001),
			Clusters:   []agvd.ClusterMAF{{Name: "WAFR", MAF: null.FloatFrom(0.002)}},
		},
		"rs2": {
			VariantID:  "rs2",
			AfricanMAF: null.FloatFrom(0.3),
			Clusters:   []agvd.ClusterMAF{{Name: "WAFR", MAF: null.FloatFrom(0.4)}},
		},
	}
	failed := map[string]struct{}{"rs4": {}}
	cached := map[string]struct{}{"rs2": {}}

	cfg := runConfig{Threshold: 0.01, Direction: agvd.DirectionBelow}
	sum, mafs, err := buildSummary(rows, results, failed, cached, cfg, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if sum.Total != 6 || sum.Queried != 4 || sum.Failed != 1 || sum.Invalid != 1 {
		t.Errorf("counts: %+v", sum)
	}
	if sum.Total != sum.Queried+sum.Failed+sum.Invalid {
		t.Errorf("total does not partition the input: %+v", sum)
	}
	if sum.PassedThreshold != 2 || sum.FailedThreshold != 1 || sum.NotFound != 1 {
		t.Errorf("verdicts: %+v", sum)
	}
	if sum.Queried != sum.PassedThreshold+sum.FailedThreshold+sum.NotFound {
		t.Errorf("queried does not partition: %+v", sum)
	}
	if sum.Cached != 1 {
		t.Errorf("cached: got %d, want 1", sum.Cached)
	}
	if want := float64(4) / float64(6); sum.SuccessRate != want {
		t.Errorf("success rate: got %f, want %f", sum.SuccessRate, want)
	}

	// rs1 appears in two rows, so its MAF is counted once per row.
	if len(mafs) != 3 {
		t.Fatalf("mafs: got %d values, want 3", len(mafs))
	}
	if sum.AfricanMAF.N != 3 || sum.AfricanMAF.Median != 0.001 || sum.AfricanMAF.Max != 0.3 {
		t.Errorf("african_maf: %+v", sum.AfricanMAF)
	}

	wafr, ok := sum.ClusterMAF["WAFR"]
	if !ok {
		t.Fatal("missing WAFR cluster stats")
	}
	if wafr.N != 3 {
		t.Errorf("WAFR n: got %d, want 3", wafr.N)
	}
	if want := (0.002 + 0.4 + 0.002) / 3; math.Abs(wafr.Mean-want) > 1e-12 {
		t.Errorf("WAFR mean: got %f, want %f", wafr.Mean, want)
	}
}

func TestDescribeMAFsEmpty(t *testing.T) {
	out, err := describeMAFs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.N != 0 || out.Mean != 0 {
		t.Errorf("empty input should yield a zero summary, got %+v", out)
	}
}

func TestCompanionPath(t *testing.T) {
	tests := []struct {
		output string
		suffix string
		want   string
	}{
		{"out.csv", "_summary.json", "out_summary.json"},
		{"/tmp/x/out.xlsx", "_failures.csv", "/tmp/x/out_failures.csv"},
		{"plain", "_summary.json", "plain_summary.json"},
	}
	for _, test := range tests {
		if got := companionPath(test.output, test.suffix); got != test.want {
			t.Errorf("companionPath(%q, %q): got %q, want %q", test.output, test.suffix, got, test.want)
		}
	}
}
