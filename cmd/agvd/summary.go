package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/pfx"
	"github.com/carbocation/runningvariance"
	"github.com/gocarina/gocsv"
	"github.com/minio/blake2b-simd"
	"github.com/montanaflynn/stats"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/variantfile"
)

// summaryReport is written as <output>_summary.json after every non-dry run.
// The counts partition the input: total = queried + failed + invalid, and
// queried (which includes cache hits) = passed + failed threshold + not
// found.
type summaryReport struct {
	Total           int     `json:"total"`
	Queried         int     `json:"queried"`
	Cached          int     `json:"cached"`
	Failed          int     `json:"failed"`
	Invalid         int     `json:"invalid"`
	PassedThreshold int     `json:"passed_threshold"`
	FailedThreshold int     `json:"failed_threshold"`
	NotFound        int     `json:"not_found"`
	SuccessRate     float64 `json:"success_rate"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	InputBlake2b    string  `json:"input_blake2b"`

	AfricanMAF mafSummary                `json:"african_maf"`
	ClusterMAF map[string]clusterSummary `json:"cluster_maf"`
}

type mafSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	N      int     `json:"n"`
}

type clusterSummary struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	N    int     `json:"n"`
}

// failureRecord is one row of <output>_failures.csv.
type failureRecord struct {
	Identifier string `csv:"identifier"`
	Batch      int    `csv:"batch"`
	Error      string `csv:"error"`
}

// buildSummary walks every input row once, classifying it and accumulating
// the frequency statistics. It also returns the per-row African MAF values
// for the verbose histogram.
func buildSummary(rows []rowState, results map[string]agvd.VariantResult, failed, cached map[string]struct{}, cfg runConfig, started time.Time) (summaryReport, []float64, error) {
	sum := summaryReport{
		Total:      len(rows),
		ClusterMAF: make(map[string]clusterSummary),
	}

	var mafs []float64
	clusterStats := make(map[string]*runningvariance.RunningStat)

	for _, st := range rows {
		if st.Err != nil {
			sum.Invalid++
			continue
		}

		key := st.ID.String()
		if _, bad := failed[key]; bad {
			sum.Failed++
			continue
		}

		sum.Queried++
		if _, hit := cached[key]; hit {
			sum.Cached++
		}

		res, ok := results[key]
		if !ok {
			sum.NotFound++
			continue
		}

		switch agvd.Cutoff(res.AfricanMAF, cfg.Threshold, cfg.Direction) {
		case agvd.VerdictPass:
			sum.PassedThreshold++
		case agvd.VerdictFail:
			sum.FailedThreshold++
		default:
			sum.NotFound++
		}

		if res.AfricanMAF.Valid {
			mafs = append(mafs, res.AfricanMAF.Float64)
		}

		for _, c := range res.Clusters {
			if !c.MAF.Valid {
				continue
			}
			rs, ok := clusterStats[c.Name]
			if !ok {
				rs = runningvariance.NewRunningStat()
				clusterStats[c.Name] = rs
			}
			rs.Push(c.MAF.Float64)
		}
	}

	if sum.Total > 0 {
		sum.SuccessRate = float64(sum.Queried) / float64(sum.Total)
	}
	sum.ElapsedSeconds = time.Since(started).Seconds()

	var err error
	if sum.AfricanMAF, err = describeMAFs(mafs); err != nil {
		return summaryReport{}, nil, err
	}

	for name, rs := range clusterStats {
		sum.ClusterMAF[name] = clusterSummary{
			Mean: rs.Mean(),
			SD:   rs.StandardDeviation(),
			N:    int(rs.N),
		}
	}

	return sum, mafs, nil
}

func describeMAFs(mafs []float64) (mafSummary, error) {
	data := stats.LoadRawData(mafs)
	if data.Len() < 1 {
		return mafSummary{}, nil
	}

	out := mafSummary{N: data.Len()}

	var err error
	if out.Mean, err = data.Mean(); err != nil {
		return mafSummary{}, pfx.Err(err)
	}
	if out.Median, err = data.Median(); err != nil {
		return mafSummary{}, pfx.Err(err)
	}
	if out.Min, err = data.Min(); err != nil {
		return mafSummary{}, pfx.Err(err)
	}
	if out.Max, err = data.Max(); err != nil {
		return mafSummary{}, pfx.Err(err)
	}

	return out, nil
}

// inputChecksum fingerprints the input file as stored, before any
// decompression, so reruns can confirm they processed the same list.
func inputChecksum(path string) (string, error) {
	h, err := blake2b.New(&blake2b.Config{Size: 32})
	if err != nil {
		return "", pfx.Err(err)
	}

	f, err := variantfile.Raw(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", pfx.Err(err)
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

// companionPath derives the sibling report paths from the output path, e.g.
// out.csv => out_summary.json.
func companionPath(output, suffix string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + suffix
}

func writeSummary(path string, sum summaryReport) error {
	j, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return pfx.Err(err)
	}

	if err := os.WriteFile(path, append(j, '\n'), 0666); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeFailures(path string, failures []failureRecord) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return pfx.Err(err)
	}

	if err := gocsv.MarshalFile(&failures, f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// printHistogram renders the African MAF distribution to stdout, 25 buckets.
func printHistogram(mafs []float64) error {
	if len(mafs) == 0 {
		return nil
	}

	hist := histogram.Hist(25, mafs)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(5)); err != nil {
		return pfx.Err(err)
	}

	return nil
}
