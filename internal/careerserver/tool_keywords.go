package careerserver

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/anatolykoptev/go_careers/internal/engine/careers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerKeywordsExtract(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keywords_extract",
		Description: "Extract representative keywords from free text with TextRank. Returns lowercase Porter stems, highest ranked first. Short texts (<100 chars) yield up to 5 keywords, medium (<300) up to 10, longer up to 15. Nothing is stored.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordsExtractInput) (*mcp.CallToolResult, engine.KeywordsExtractOutput, error) {
		return nil, extractKeywords(ctx, d, input), nil
	})
}

func extractKeywords(ctx context.Context, d Deps, input engine.KeywordsExtractInput) engine.KeywordsExtractOutput {
	kws := d.Extractor.Extract(ctx, input.Text)
	if kws == nil {
		kws = []string{}
	}
	return engine.KeywordsExtractOutput{
		Keywords:   kws,
		TopN:       d.Extractor.TopN(input.Text),
		TextLength: utf8.RuneCountInString(input.Text),
	}
}

func registerKeywordsSync(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keywords_sync",
		Description: "Re-extract keywords from the current text of a job post or student and update the stored set with the minimal diff: stale keywords are deleted, new ones inserted, nothing is written when the set is unchanged. Pass old_text to skip the work entirely when the text did not change.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordsSyncInput) (*mcp.CallToolResult, engine.KeywordsSyncOutput, error) {
		out, err := syncKeywords(ctx, d, input)
		return nil, out, err
	})
}

func syncKeywords(ctx context.Context, d Deps, input engine.KeywordsSyncInput) (engine.KeywordsSyncOutput, error) {
	store, err := d.storeFor(input.OwnerKind, input.OwnerID)
	if err != nil {
		return engine.KeywordsSyncOutput{}, err
	}

	var res careers.SyncResult
	if input.OldText != "" {
		var ran bool
		res, ran, err = d.Sync.Update(ctx, store, input.OwnerID, input.OldText, input.Text)
		if err == nil && !ran {
			return engine.KeywordsSyncOutput{Added: []string{}, Removed: []string{}, Unchanged: []string{}, Skipped: true}, nil
		}
	} else {
		res, err = d.Sync.Sync(ctx, store, input.OwnerID, input.Text)
	}
	if err != nil {
		slog.Warn("keywords_sync failed", slog.String("owner", input.OwnerID), slog.Any("error", err))
		return engine.KeywordsSyncOutput{}, err
	}
	return engine.KeywordsSyncOutput{
		Added:     nonNil(res.Added),
		Removed:   nonNil(res.Removed),
		Unchanged: nonNil(res.Unchanged),
	}, nil
}

func registerKeywordsGet(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keywords_get",
		Description: "Return the stored keywords of a job post or student, sorted.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordsOwnerInput) (*mcp.CallToolResult, engine.KeywordsGetOutput, error) {
		out, err := getKeywords(ctx, d, input)
		return nil, out, err
	})
}

func getKeywords(ctx context.Context, d Deps, input engine.KeywordsOwnerInput) (engine.KeywordsGetOutput, error) {
	store, err := d.storeFor(input.OwnerKind, input.OwnerID)
	if err != nil {
		return engine.KeywordsGetOutput{}, err
	}
	set, err := store.Fetch(ctx, input.OwnerID)
	if err != nil {
		return engine.KeywordsGetOutput{}, fmt.Errorf("keywords_get: %w", err)
	}
	return engine.KeywordsGetOutput{
		OwnerKind: string(store.Kind()),
		OwnerID:   input.OwnerID,
		Keywords:  set.Sorted(),
	}, nil
}

func registerKeywordsDelete(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keywords_delete",
		Description: "Delete every stored keyword of a job post or student, for use when the owner itself is deleted. Returns the keywords that were removed.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordsOwnerInput) (*mcp.CallToolResult, engine.KeywordsGetOutput, error) {
		out, err := getKeywords(ctx, d, input)
		if err != nil {
			return nil, out, err
		}
		store, err := d.storeFor(input.OwnerKind, input.OwnerID)
		if err != nil {
			return nil, engine.KeywordsGetOutput{}, err
		}
		if err := d.Sync.Remove(ctx, store, input.OwnerID); err != nil {
			return nil, engine.KeywordsGetOutput{}, err
		}
		return nil, out, nil
	})
}

func registerKeywordsReindex(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "keywords_reindex",
		Description: "Re-synchronise the keywords of many owners at once, e.g. after the ranking configuration changed. Runs on a bounded, rate-limited worker pool; a failing document does not stop the others.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.KeywordsReindexInput) (*mcp.CallToolResult, engine.KeywordsReindexOutput, error) {
		return nil, reindex(ctx, d, input), nil
	})
}

func reindex(ctx context.Context, d Deps, input engine.KeywordsReindexInput) engine.KeywordsReindexOutput {
	out := engine.KeywordsReindexOutput{Total: len(input.Documents)}
	docs := make([]careers.Document, 0, len(input.Documents))
	for _, doc := range input.Documents {
		kind, err := careers.ParseOwnerKind(doc.OwnerKind)
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("reindex %s: %v", doc.OwnerID, err))
			continue
		}
		docs = append(docs, careers.Document{Kind: kind, OwnerID: doc.OwnerID, Text: doc.Text})
	}

	var report careers.ReindexReport
	err := engine.TrackOperation(ctx, "keywords_reindex", func(ctx context.Context) error {
		var err error
		report, err = d.Reindexer.Run(ctx, docs)
		return err
	})

	out.Changed = report.Changed
	out.Unchanged = report.Unchanged
	out.Failed += report.Failed
	out.Skipped = report.Skipped
	if err != nil {
		for _, e := range unwrapJoined(err) {
			out.Errors = append(out.Errors, e.Error())
		}
	}
	return out
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ptr[T any](v T) *T { return &v }
