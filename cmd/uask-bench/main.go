// Command uask-bench ingests a CSV corpus, generates a synthetic
// query workload, and times single-query and batch resolution over
// the built index, printing a report table to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vjayram/uask/internal/batchquery"
	"github.com/vjayram/uask/internal/benchmark"
	"github.com/vjayram/uask/internal/ingest"
	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/internal/querygen"
	"github.com/vjayram/uask/internal/spatial"
	"github.com/vjayram/uask/pkg/utils"
)

func main() {
	csvPath := flag.String("csv", "", "path to the POI corpus CSV to ingest (required)")
	numQueries := flag.Int("queries", 1000, "number of synthetic queries to generate")
	seed := flag.Int64("seed", 42, "random seed for the query generator")
	k := flag.Int("k", 10, "top-k result count per query")
	nPos := flag.Int("pos", 2, "number of positive keywords per generated query")
	nNeg := flag.Int("neg", 1, "number of negative keywords per generated query")
	lambda := flag.Float64("lambda", 0.5, "distance/relevance tradeoff factor")
	trials := flag.Int("trials", 3, "number of repeated trials for the single-query run")
	maxClusterSize := flag.Int("cluster-size", 16, "max queries per batch cluster")
	flag.Parse()

	logger := utils.NewLogger("info", "text")

	if *csvPath == "" {
		logger.Fatal("-csv is required")
	}

	idx, err := buildIndex(*csvPath, logger)
	if err != nil {
		logger.Fatalf("failed to build index: %v", err)
	}
	logger.Infof("ingested %d objects from %s", idx.Len(), *csvPath)

	gen := querygen.New(*seed)
	queries, err := gen.Generate(*numQueries, *nPos, *nNeg, *k, *lambda)
	if err != nil {
		logger.Fatalf("failed to generate queries: %v", err)
	}
	logger.Infof("generated %d queries (k=%d, lambda=%.2f)", len(queries), *k, *lambda)

	queryEngine := query.New(idx)
	batchEngine := batchquery.New(idx)

	singleReport := benchmark.RunSingle(queryEngine, queries, *trials)
	batchReport := benchmark.RunBatch(batchEngine, queries, *maxClusterSize)

	printReport(singleReport)
	printReport(batchReport)
}

func buildIndex(csvPath string, logger *utils.Logger) (*spatial.Index, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ingest.LoadCSV(f, logger)
	if err != nil {
		return nil, err
	}

	bounds := spatial.Rectangle{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}
	idx := spatial.New(bounds, 16)
	idx.SetLogger(logger)
	inserted := idx.AddBatch(records)
	if inserted != len(records) {
		logger.Warnf("skipped %d of %d records during ingest", len(records)-inserted, len(records))
	}
	return idx, nil
}

func printReport(r benchmark.Report) {
	fmt.Printf("%-14s queries=%-6d total=%-12s avg=%s\n",
		r.Label, r.QueryCount, r.TotalElapsed.Round(time.Microsecond), r.AverageElapsed().Round(time.Microsecond))
}
