// Package benchmark implements the timing harness (component H): it
// times single-query and batch resolution over a generated workload
// and reports average/total latency, the shape
// original_source/benchmark/bench_perf.py prints to stdout.
package benchmark

import (
	"time"

	"github.com/vjayram/uask/internal/batchquery"
	"github.com/vjayram/uask/internal/query"
)

// Report is the summary of one timed run.
type Report struct {
	Label        string
	QueryCount   int
	TotalElapsed time.Duration
}

// AverageElapsed returns the per-query average, or zero if QueryCount
// is zero.
func (r Report) AverageElapsed() time.Duration {
	if r.QueryCount == 0 {
		return 0
	}
	return r.TotalElapsed / time.Duration(r.QueryCount)
}

// RunSingle times resolving each query in queries individually trials
// times and reports the cumulative elapsed time over every trial and
// query — mirroring run_single_query/run_group_queries in the original
// harness, which reruns a query trials times to smooth out timing
// noise.
func RunSingle(e *query.Engine, queries []query.SpatialQuery, trials int) Report {
	if trials < 1 {
		trials = 1
	}
	start := time.Now()
	for t := 0; t < trials; t++ {
		for _, q := range queries {
			_, _ = e.Resolve(q)
		}
	}
	return Report{
		Label:        "single",
		QueryCount:   len(queries) * trials,
		TotalElapsed: time.Since(start),
	}
}

// RunBatch times one process_batch_queries call over the whole
// workload, mirroring run_batch_queries in the original harness.
func RunBatch(e *batchquery.Engine, queries []query.SpatialQuery, maxClusterSize int) Report {
	start := time.Now()
	e.ProcessBatch(queries, maxClusterSize)
	return Report{
		Label:        "batch",
		QueryCount:   len(queries),
		TotalElapsed: time.Since(start),
	}
}
