package main

import (
	"sort"
	"strconv"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/variantfile"
)

// Annotation columns appended to every output row, in this order. One
// <Cluster>_MAF column per population cluster seen in the results follows,
// sorted by cluster name.
const (
	colThreshold  = "THRESHOLD"
	colCutoff     = "AGVDCUTOFF"
	colAfricanMAF = "African_MAF"
)

// annotate merges the query results onto the original table. Every original
// column and row is retained in input order; rows that failed or never
// parsed keep their frequency cells empty.
func annotate(t *variantfile.Table, rows []rowState, results map[string]agvd.VariantResult, failed map[string]struct{}, cfg runConfig) *variantfile.Table {
	clusterNames := collectClusterNames(results)

	header := make([]string, 0, len(t.Header)+3+len(clusterNames))
	header = append(header, t.Header...)
	header = append(header, colThreshold, colCutoff, colAfricanMAF)
	for _, name := range clusterNames {
		header = append(header, name+"_MAF")
	}

	out := &variantfile.Table{Path: t.Path, Header: header, Rows: make([][]string, len(t.Rows))}

	runThreshold := formatMAF(cfg.Threshold)

	for i, row := range t.Rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, row...)
		for len(cells) < len(t.Header) {
			cells = append(cells, "")
		}

		verdict := agvd.VerdictInvalid
		african := ""
		thresholdCell := runThreshold
		clusterCells := make(map[string]string, len(clusterNames))

		if st := rows[i]; st.Err == nil {
			key := st.ID.String()
			if res, ok := results[key]; ok {
				verdict = agvd.Cutoff(res.AfricanMAF, cfg.Threshold, cfg.Direction)
				if res.AfricanMAF.Valid {
					african = formatMAF(res.AfricanMAF.Float64)
				}
				if res.UsedThreshold.Valid {
					thresholdCell = formatMAF(res.UsedThreshold.Float64)
				}
				for _, c := range res.Clusters {
					if c.MAF.Valid {
						clusterCells[c.Name] = formatMAF(c.MAF.Float64)
					}
				}
			} else if _, bad := failed[key]; bad {
				verdict = agvd.VerdictError
			} else {
				verdict = agvd.VerdictNotFound
			}
		}

		cells = append(cells, thresholdCell, verdict, african)
		for _, name := range clusterNames {
			cells = append(cells, clusterCells[name])
		}

		out.Rows[i] = cells
	}

	return out
}

// collectClusterNames unions the cluster names present across all results.
func collectClusterNames(results map[string]agvd.VariantResult) []string {
	seen := make(map[string]struct{})
	for _, res := range results {
		for _, c := range res.Clusters {
			seen[c.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func formatMAF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
