package careers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/anatolykoptev/go_careers/internal/engine/keywords"
)

// Extractor turns free text into keyword stems.
type Extractor interface {
	Extract(ctx context.Context, text string) []string
}

// CachedExtractor serves repeated extractions of identical text from the
// engine cache. Results are identical to the wrapped extractor's.
type CachedExtractor struct {
	ex          *keywords.Extractor
	fingerprint string
}

// NewCachedExtractor wraps ex. The cache key covers the ranking
// configuration, so extractors with different tuning never share entries.
func NewCachedExtractor(ex *keywords.Extractor) *CachedExtractor {
	c := ex.Config()
	fp := fmt.Sprintf("w%d d%g t%g i%d l%d/%d n%d/%d/%d",
		c.Window, c.Damping, c.Tolerance, c.MaxIter,
		c.ShortLength, c.LongLength, c.ShortTopN, c.MediumTopN, c.LongTopN)
	return &CachedExtractor{ex: ex, fingerprint: fp}
}

// Extract implements Extractor.
func (c *CachedExtractor) Extract(ctx context.Context, text string) []string {
	key := engine.CacheKey("extract", c.fingerprint, text)
	if words, ok := engine.CacheLoadJSON[[]string](ctx, key); ok {
		return words
	}
	words := c.ex.Extract(text)
	engine.CacheStoreJSON(ctx, key, words)
	return words
}

// TopN reports how many keywords are requested for text.
func (c *CachedExtractor) TopN(text string) int { return c.ex.TopN(text) }

// SyncResult is the diff applied by one synchronisation. All slices are
// sorted.
type SyncResult struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// Changed reports whether the sync wrote anything.
func (r SyncResult) Changed() bool { return len(r.Added) > 0 || len(r.Removed) > 0 }

// Synchronizer keeps an owner's persisted keyword set equal to the
// keywords extracted from its current text.
type Synchronizer struct {
	extractor Extractor
}

// NewSynchronizer returns a Synchronizer using ex.
func NewSynchronizer(ex Extractor) *Synchronizer {
	return &Synchronizer{extractor: ex}
}

// Extract runs the synchronizer's extractor; exposed for read-only callers.
func (s *Synchronizer) Extract(ctx context.Context, text string) []string {
	return s.extractor.Extract(ctx, text)
}

// Sync replaces the owner's stored keywords with those extracted from
// text. Only the difference is written: stale keywords are deleted, then
// new ones inserted. When nothing differs no write is issued.
//
// Extraction happens before any storage call. If store implements
// Transactional the fetch and both writes run in one transaction.
func (s *Synchronizer) Sync(ctx context.Context, store KeywordStore, ownerID, text string) (SyncResult, error) {
	engine.IncrSyncCalls()
	next := NewSet(s.extractor.Extract(ctx, text)...)

	var res SyncResult
	apply := func(ks KeywordStore) error {
		var err error
		res, err = applyDiff(ctx, ks, ownerID, next)
		return err
	}

	var err error
	if tx, ok := store.(Transactional); ok {
		err = tx.InTx(ctx, ownerID, apply)
	} else {
		err = apply(store)
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("keywords sync %s %s: %w", store.Kind(), ownerID, err)
	}

	if !res.Changed() {
		engine.IncrSyncNoops()
	}
	slog.Debug("keywords synced",
		slog.String("kind", string(store.Kind())),
		slog.String("owner", ownerID),
		slog.Int("added", len(res.Added)),
		slog.Int("removed", len(res.Removed)),
		slog.String("text", engine.Preview(text)))
	return res, nil
}

func applyDiff(ctx context.Context, ks KeywordStore, ownerID string, next Set) (SyncResult, error) {
	current, err := ks.Fetch(ctx, ownerID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch: %w", err)
	}

	toRemove := current.Minus(next)
	toAdd := next.Minus(current)
	res := SyncResult{
		Added:     toAdd.Sorted(),
		Removed:   toRemove.Sorted(),
		Unchanged: current.Minus(toRemove).Sorted(),
	}

	if len(toRemove) > 0 {
		if err := ks.Delete(ctx, ownerID, toRemove); err != nil {
			return SyncResult{}, fmt.Errorf("delete: %w", err)
		}
		engine.AddKeywordsDeleted(len(toRemove))
	}
	if len(toAdd) > 0 {
		if err := ks.Create(ctx, ownerID, toAdd); err != nil {
			return SyncResult{}, fmt.Errorf("create: %w", err)
		}
		engine.AddKeywordsInserted(len(toAdd))
	}
	return res, nil
}

// Create extracts keywords from the text of a newly created owner and
// inserts them. Empty text inserts nothing.
func (s *Synchronizer) Create(ctx context.Context, store KeywordStore, ownerID, text string) ([]string, error) {
	words := NewSet(s.extractor.Extract(ctx, text)...)
	if len(words) == 0 {
		return nil, nil
	}
	if err := store.Create(ctx, ownerID, words); err != nil {
		return nil, fmt.Errorf("keywords create %s %s: %w", store.Kind(), ownerID, err)
	}
	engine.AddKeywordsInserted(len(words))
	return words.Sorted(), nil
}

// Update syncs the owner only when its text actually changed.
// ok is false when oldText equals newText and nothing was done.
func (s *Synchronizer) Update(ctx context.Context, store KeywordStore, ownerID, oldText, newText string) (res SyncResult, ok bool, err error) {
	if oldText == newText {
		slog.Debug("keywords update skipped, text unchanged",
			slog.String("kind", string(store.Kind())),
			slog.String("owner", ownerID),
			slog.Int("len", len(newText)))
		return SyncResult{}, false, nil
	}
	res, err = s.Sync(ctx, store, ownerID, newText)
	return res, err == nil, err
}

// Remove deletes every keyword of an owner that is being deleted.
func (s *Synchronizer) Remove(ctx context.Context, store KeywordStore, ownerID string) error {
	if err := store.DeleteAll(ctx, ownerID); err != nil {
		return fmt.Errorf("keywords remove %s %s: %w", store.Kind(), ownerID, err)
	}
	return nil
}
