package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Extractions          atomic.Int64
	PageRankNonConverged atomic.Int64
	SyncCalls            atomic.Int64
	SyncNoops            atomic.Int64
	KeywordsInserted     atomic.Int64
	KeywordsDeleted      atomic.Int64
	Recommendations      atomic.Int64
	ReindexJobs          atomic.Int64
	ReindexErrors        atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"extractions":             metrics.Extractions.Load(),
		"extraction_cache_hits":   hits,
		"extraction_cache_misses": misses,
		"pagerank_nonconverged":   metrics.PageRankNonConverged.Load(),
		"sync_calls":              metrics.SyncCalls.Load(),
		"sync_noops":              metrics.SyncNoops.Load(),
		"keywords_inserted":       metrics.KeywordsInserted.Load(),
		"keywords_deleted":        metrics.KeywordsDeleted.Load(),
		"recommendations":         metrics.Recommendations.Load(),
		"reindex_jobs":            metrics.ReindexJobs.Load(),
		"reindex_errors":          metrics.ReindexErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"extractions", "extraction_cache_hits", "extraction_cache_misses",
		"pagerank_nonconverged",
		"sync_calls", "sync_noops", "keywords_inserted", "keywords_deleted",
		"recommendations",
		"reindex_jobs", "reindex_errors",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for keywords/ sub-package.
func IncrExtractions()          { metrics.Extractions.Add(1) }
func IncrPageRankNonConverged() { metrics.PageRankNonConverged.Add(1) }

// Incrementors for careers/ sub-package.
func IncrSyncCalls()            { metrics.SyncCalls.Add(1) }
func IncrSyncNoops()            { metrics.SyncNoops.Add(1) }
func AddKeywordsInserted(n int) { metrics.KeywordsInserted.Add(int64(n)) }
func AddKeywordsDeleted(n int)  { metrics.KeywordsDeleted.Add(int64(n)) }
func IncrRecommendations()      { metrics.Recommendations.Add(1) }
func IncrReindexJobs()          { metrics.ReindexJobs.Add(1) }
func IncrReindexErrors()        { metrics.ReindexErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 2*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
