// agvd annotates a tabular variant list with allele frequencies from the
// African Genome Variation Database. It reads CSV/TSV, Excel, VCF, or PLINK
// BIM input, queries the AGVD GraphQL API in batches, applies a minor allele
// frequency cutoff to each variant, and writes the input back out with
// THRESHOLD, AGVDCUTOFF, African_MAF, and per-cluster MAF columns attached,
// alongside a JSON run summary.
package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/h3abionet/agvd"
	_ "github.com/h3abionet/agvd/buildinfo/buildinfoprint"
)

func main() {
	var (
		cfg           runConfig
		clusterList   string
		directionName string
	)

	flag.StringVar(&cfg.Token, "KEY", "", "AGVD API token. May be omitted when --USER and --PASSWORD are set.")
	flag.StringVar(&cfg.Token, "k", "", "(Shorthand for --KEY)")
	flag.StringVar(&cfg.UserID, "USER", "", "AGVD account name, exchanged for a token at startup. Ignored when --KEY is set.")
	flag.StringVar(&cfg.UserID, "u", "", "(Shorthand for --USER)")
	flag.StringVar(&cfg.Password, "PASSWORD", "", "Password for --USER.")
	flag.StringVar(&cfg.Password, "p", "", "(Shorthand for --PASSWORD)")
	flag.StringVar(&cfg.Infile, "INFILE", "", "Variant list to annotate: CSV, TSV, .xls, .xlsx, VCF (optionally gzipped), or PLINK .bim. Local path or gs:// URL.")
	flag.StringVar(&cfg.Infile, "i", "", "(Shorthand for --INFILE)")
	flag.StringVar(&cfg.Output, "OUTPUT", "", "Annotated output path. The extension picks the format: .csv, .tsv, .txt, or .xlsx.")
	flag.StringVar(&cfg.Output, "o", "", "(Shorthand for --OUTPUT)")
	flag.Float64Var(&cfg.Threshold, "THRESHOLD", -1, "Minor allele frequency cutoff, between 0 and 1.")
	flag.Float64Var(&cfg.Threshold, "t", -1, "(Shorthand for --THRESHOLD)")
	flag.IntVar(&cfg.BatchSize, "BATCH", 1000, "Number of variants sent per AGVD query.")
	flag.IntVar(&cfg.BatchSize, "b", 1000, "(Shorthand for --BATCH)")
	flag.StringVar(&cfg.Columns.ID, "COLUMN", "", "Header name of the column holding rsIDs or CHR:POS:REF:ALT identifiers. Inferred from the header when unset.")
	flag.StringVar(&cfg.Columns.ID, "c", "", "(Shorthand for --COLUMN)")
	flag.StringVar(&cfg.Columns.Chrom, "CHR", "", "Header name of the chromosome column, for inputs without a combined identifier column.")
	flag.StringVar(&cfg.Columns.Pos, "POS", "", "Header name of the position column.")
	flag.StringVar(&cfg.Columns.Ref, "REF", "", "Header name of the reference allele column.")
	flag.StringVar(&cfg.Columns.Alt, "ALT", "", "Header name of the alternate allele column.")
	flag.StringVar(&clusterList, "CLUSTERS", "", "Comma-delimited population clusters to report (e.g., WAFR,EAFR). All clusters when unset.")
	flag.StringVar(&directionName, "direction", "below", "Which side of --THRESHOLD passes: below keeps rare variants, above keeps common ones.")
	flag.IntVar(&cfg.Threads, "threads", 4, "Number of batches queried concurrently.")
	flag.StringVar(&cfg.BaseURL, "url", agvd.DefaultBaseURL, "Base URL of the AGVD service.")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "Per-request timeout.")
	flag.IntVar(&cfg.Retries, "retries", 3, "Additional attempts per batch after a retryable failure.")
	flag.BoolVar(&cfg.UseCache, "cache", false, "Reuse previously fetched results from a local cache, and add new ones to it.")
	flag.StringVar(&cfg.CachePath, "cache-path", "", "Cache file location. Defaults to a per-user cache directory.")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", 0, "Discard cached results older than this. 0 keeps them forever.")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the input and report what would be queried, without contacting AGVD.")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log per-batch progress and print a MAF histogram.")
	flag.Parse()

	if cfg.Infile == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide --INFILE")
	}

	if !cfg.DryRun {
		if cfg.Output == "" {
			flag.PrintDefaults()
			log.Fatalln("Please provide --OUTPUT")
		}

		if cfg.Threshold < 0 || cfg.Threshold > 1 {
			flag.PrintDefaults()
			log.Fatalln("Please provide --THRESHOLD between 0 and 1")
		}

		if cfg.Token == "" && (cfg.UserID == "" || cfg.Password == "") {
			flag.PrintDefaults()
			log.Fatalln("Please provide --KEY, or --USER together with --PASSWORD")
		}
	}

	if cfg.BatchSize < 1 {
		log.Fatalln("--BATCH must be at least 1")
	}

	if cfg.Threads < 1 {
		log.Fatalln("--threads must be at least 1")
	}

	var err error
	if cfg.Direction, err = agvd.ParseDirection(directionName); err != nil {
		log.Fatalln(err)
	}

	for _, cluster := range strings.Split(clusterList, ",") {
		if cluster = strings.TrimSpace(cluster); cluster != "" {
			cfg.Clusters = append(cfg.Clusters, cluster)
		}
	}

	if err := run(cfg); err != nil {
		log.Fatalln(err)
	}
}
