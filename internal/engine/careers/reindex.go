package careers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Document is one owner's current text.
type Document struct {
	Kind    OwnerKind `json:"owner_kind"`
	OwnerID string    `json:"owner_id"`
	Text    string    `json:"text"`
}

// ReindexReport summarises a reindex run. Every document is counted in
// exactly one of Changed, Unchanged, Failed or Skipped.
type ReindexReport struct {
	Total     int           `json:"total"`
	Changed   int           `json:"changed"`
	Unchanged int           `json:"unchanged"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Reindexer re-synchronises many owners, for example after the stoplist
// or ranking configuration changed.
type Reindexer struct {
	sync    *Synchronizer
	stores  Stores
	workers int
	limiter *rate.Limiter
}

// NewReindexer returns a Reindexer running at most workers syncs at once
// and starting at most perSecond syncs per second (<= 0: unlimited).
func NewReindexer(s *Synchronizer, stores Stores, workers int, perSecond float64) *Reindexer {
	if workers <= 0 {
		workers = 1
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Reindexer{sync: s, stores: stores, workers: workers, limiter: rate.NewLimiter(limit, workers)}
}

// Run syncs every document. A failing document does not stop the others;
// all failures are returned joined. Cancelling ctx stops scheduling new
// documents: those are reported as Skipped and the cancellation error is
// joined once.
func (r *Reindexer) Run(ctx context.Context, docs []Document) (ReindexReport, error) {
	start := time.Now()
	report := ReindexReport{Total: len(docs)}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		engine.IncrReindexErrors()
		mu.Lock()
		report.Failed++
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, d := range docs {
		if err := r.limiter.Wait(ctx); err != nil {
			mu.Lock()
			report.Skipped = len(docs) - i
			errs = append(errs, fmt.Errorf("reindex: %d documents skipped: %w", report.Skipped, err))
			mu.Unlock()
			break
		}
		g.Go(func() error {
			engine.IncrReindexJobs()
			store, err := r.stores.Keywords(d.Kind)
			if err != nil {
				fail(fmt.Errorf("reindex %s: %w", d.OwnerID, err))
				return nil
			}
			res, err := r.sync.Sync(ctx, store, d.OwnerID, d.Text)
			if err != nil {
				fail(err)
				return nil
			}
			mu.Lock()
			if res.Changed() {
				report.Changed++
			} else {
				report.Unchanged++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.Elapsed = time.Since(start)
	slog.Info("reindex finished",
		slog.Int("total", report.Total),
		slog.Int("changed", report.Changed),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.Duration("elapsed", report.Elapsed))
	return report, errors.Join(errs...)
}
