package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/querycache"
	"github.com/h3abionet/agvd/variantfile"
	"github.com/h3abionet/agvd/variantid"
)

// runConfig is the fully parsed command line.
type runConfig struct {
	Token    string
	UserID   string
	Password string

	Infile string
	Output string

	Threshold float64
	Direction agvd.Direction
	Clusters  []string

	Columns   variantfile.ColumnSpec
	BatchSize int
	Threads   int

	BaseURL string
	Timeout time.Duration
	Retries int

	UseCache  bool
	CachePath string
	CacheTTL  time.Duration

	DryRun  bool
	Verbose bool
}

// rowState tracks one input row through the pipeline. Err is non-nil when
// the row's identifier could not be parsed; such rows are never queried.
type rowState struct {
	ID  variantid.VariantID
	Err error
}

// batchOutcome is one worker's report to the collector: either the results
// for its batch, or the error that exhausted its retries.
type batchOutcome struct {
	Seq     int
	Batch   []variantid.VariantID
	Results []agvd.VariantResult
	Err     error
}

func run(cfg runConfig) error {
	started := time.Now()

	log.Println("Reading", cfg.Infile)
	table, err := variantfile.ReadTable(cfg.Infile)
	if err != nil {
		return err
	}

	layout, err := variantfile.ResolveLayout(table.Header, cfg.Columns)
	if err != nil {
		return err
	}

	rows := make([]rowState, len(table.Rows))
	invalid := 0
	for i, row := range table.Rows {
		rows[i].ID, rows[i].Err = layout.Identifier(row)
		if rows[i].Err != nil {
			invalid++
			if cfg.Verbose {
				// +2: 1-based, and the header occupies the first line
				log.Printf("Row %d: %v\n", i+2, rows[i].Err)
			}
		}
	}

	ids := uniqueIDs(rows)
	log.Printf("Found %d rows carrying %d distinct valid identifiers (%d invalid rows)\n", len(rows), len(ids), invalid)

	if cfg.DryRun {
		batches, err := variantid.SplitBatches(ids, cfg.BatchSize)
		if err != nil {
			return err
		}
		log.Printf("Dry run: would send %d batches of up to %d identifiers\n", len(batches), cfg.BatchSize)
		return nil
	}

	client := agvd.NewClient(cfg.BaseURL, cfg.Token)
	client.HTTPClient.Timeout = cfg.Timeout
	client.MaxRetries = cfg.Retries

	ctx := context.Background()
	if cfg.Token != "" {
		if err := client.VerifyToken(ctx); err != nil {
			return err
		}
	} else {
		if err := client.Login(ctx, cfg.UserID, cfg.Password); err != nil {
			return err
		}
	}

	results := make(map[string]agvd.VariantResult, len(ids))
	cachedKeys := make(map[string]struct{})
	misses := ids

	var store *querycache.Store
	if cfg.UseCache {
		path := cfg.CachePath
		if path == "" {
			if path, err = querycache.DefaultPath(); err != nil {
				return err
			}
		}

		if store, err = querycache.Open(path, cfg.CacheTTL); err != nil {
			return err
		}
		defer store.Close()

		hits, missed, err := store.Fetch(ids)
		if err != nil {
			return err
		}
		for k, v := range hits {
			results[k] = v
			cachedKeys[k] = struct{}{}
		}
		misses = missed

		log.Printf("Cache %s: %d hits, %d misses\n", path, len(hits), len(misses))
	}

	failures, err := queryBatches(ctx, cfg, client, store, misses, results)
	if err != nil {
		return err
	}

	failedKeys := make(map[string]struct{}, len(failures))
	for _, rec := range failures {
		failedKeys[rec.Identifier] = struct{}{}
	}

	annotated := annotate(table, rows, results, failedKeys, cfg)
	if err := variantfile.WriteTable(annotated, cfg.Output); err != nil {
		return err
	}
	log.Println("Wrote", cfg.Output)

	sum, mafs, err := buildSummary(rows, results, failedKeys, cachedKeys, cfg, started)
	if err != nil {
		return err
	}

	if sum.InputBlake2b, err = inputChecksum(cfg.Infile); err != nil {
		return err
	}

	summaryPath := companionPath(cfg.Output, "_summary.json")
	if err := writeSummary(summaryPath, sum); err != nil {
		return err
	}
	log.Println("Wrote", summaryPath)

	if len(failures) > 0 {
		failuresPath := companionPath(cfg.Output, "_failures.csv")
		if err := writeFailures(failuresPath, failures); err != nil {
			return err
		}
		log.Println("Wrote", failuresPath)
	}

	if cfg.Verbose {
		if err := printHistogram(mafs); err != nil {
			return err
		}
	}

	log.Printf("Done: %d rows in %.1f seconds (%d queried, %d failed, %d invalid)\n",
		sum.Total, sum.ElapsedSeconds, sum.Queried, sum.Failed, sum.Invalid)

	return nil
}

// queryBatches fans the pending identifiers out over a bounded worker pool,
// one AGVD request per batch. Results land in results, keyed by canonical
// identifier; rows of exhausted batches come back as failure records. An
// authentication failure aborts the run even mid-flight.
func queryBatches(ctx context.Context, cfg runConfig, client *agvd.Client, store *querycache.Store, pending []variantid.VariantID, results map[string]agvd.VariantResult) ([]failureRecord, error) {
	batches, err := variantid.SplitBatches(pending, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	opts := agvd.SearchOptions{Threshold: cfg.Threshold, Clusters: cfg.Clusters}

	var (
		failures []failureRecord
		authErr  error
	)

	outcomes := make(chan batchOutcome, cfg.Threads)
	doneListening := make(chan struct{})
	go func() {
		defer func() { doneListening <- struct{}{} }()
		// Serialize collection: the results map, the cache, and the failure
		// list are only touched from this goroutine.
		for out := range outcomes {
			if out.Err != nil {
				var aerr *agvd.AuthError
				if errors.As(out.Err, &aerr) && authErr == nil {
					authErr = out.Err
				}

				log.Printf("Batch %d/%d failed: %v\n", out.Seq+1, len(batches), out.Err)
				for _, id := range out.Batch {
					failures = append(failures, failureRecord{
						Identifier: id.String(),
						Batch:      out.Seq + 1,
						Error:      out.Err.Error(),
					})
				}
				continue
			}

			fresh := make(map[string]agvd.VariantResult)
			for _, id := range out.Batch {
				if res, ok := agvd.MatchResult(id, out.Results); ok {
					results[id.String()] = res
					fresh[id.String()] = res
				}
			}

			if store != nil {
				if err := store.Put(fresh); err != nil {
					log.Println("Cache write failed:", err)
				}
			}

			if cfg.Verbose {
				log.Printf("Batch %d/%d: %d identifiers, %d known to AGVD\n", out.Seq+1, len(batches), len(out.Batch), len(fresh))
			}
		}
	}()

	semaphore := make(chan struct{}, cfg.Threads)
	for i, batch := range batches {
		// Will block after cfg.Threads simultaneous goroutines are running
		semaphore <- struct{}{}

		go func(seq int, batch []variantid.VariantID) {
			defer func() { <-semaphore }()

			res, err := client.VariantSearch(ctx, batch, opts)
			outcomes <- batchOutcome{Seq: seq, Batch: batch, Results: res, Err: err}
		}(i, batch)
	}

	// Make sure every worker has reported before closing the outcome
	// channel, otherwise we would lose the last cfg.Threads reports.
	for i := 0; i < cap(semaphore); i++ {
		semaphore <- struct{}{}
	}

	close(outcomes)
	<-doneListening

	if authErr != nil {
		return nil, authErr
	}

	return failures, nil
}

// uniqueIDs returns each distinct valid identifier once, in first-seen row
// order, so duplicate rows cost one query slot.
func uniqueIDs(rows []rowState) []variantid.VariantID {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]variantid.VariantID, 0, len(rows))
	for _, st := range rows {
		if st.Err != nil {
			continue
		}

		key := st.ID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, st.ID)
	}

	return ids
}
