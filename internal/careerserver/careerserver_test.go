package careerserver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/anatolykoptev/go_careers/internal/engine/careers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordsExtractor treats every whitespace-separated word as a keyword.
type wordsExtractor struct{}

func (wordsExtractor) Extract(_ context.Context, text string) []string { return strings.Fields(text) }
func (wordsExtractor) TopN(string) int                                 { return 5 }

func testDeps(t *testing.T) (Deps, *careers.SQLStore) {
	t.Helper()
	store, err := careers.OpenSQLStore(context.Background(), "sqlite", filepath.Join(t.TempDir(), "kw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sync := careers.NewSynchronizer(wordsExtractor{})
	return Deps{
		Extractor:   wordsExtractor{},
		Sync:        sync,
		Stores:      store,
		Recommender: careers.NewRecommender(store.Students(), store, 0),
		Reindexer:   careers.NewReindexer(sync, store, 2, 0),
	}, store
}

func TestRegisterTools(t *testing.T) {
	d, _ := testDeps(t)
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "dev"}, nil)
	assert.Equal(t, 6, RegisterTools(server, d))
}

func TestExtractKeywords(t *testing.T) {
	d, _ := testDeps(t)
	out := extractKeywords(context.Background(), d, engine.KeywordsExtractInput{Text: "go sql"})
	assert.Equal(t, []string{"go", "sql"}, out.Keywords)
	assert.Equal(t, 5, out.TopN)
	assert.Equal(t, 6, out.TextLength)

	out = extractKeywords(context.Background(), d, engine.KeywordsExtractInput{})
	assert.NotNil(t, out.Keywords)
	assert.Empty(t, out.Keywords)
}

func TestSyncAndGetKeywords(t *testing.T) {
	ctx := context.Background()
	d, _ := testDeps(t)

	out, err := syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "job_post", OwnerID: "1", Text: "python java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "python"}, out.Added)

	out, err = syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "job_post", OwnerID: "1", Text: "java sql", OldText: "python java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sql"}, out.Added)
	assert.Equal(t, []string{"python"}, out.Removed)
	assert.Equal(t, []string{"java"}, out.Unchanged)

	out, err = syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "job_post", OwnerID: "1", Text: "java sql", OldText: "java sql"})
	require.NoError(t, err)
	assert.True(t, out.Skipped)

	got, err := getKeywords(ctx, d, engine.KeywordsOwnerInput{OwnerKind: "JOB_POST", OwnerID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "job_post", got.OwnerKind)
	assert.Equal(t, []string{"java", "sql"}, got.Keywords)
}

func TestSyncKeywords_Validation(t *testing.T) {
	d, _ := testDeps(t)
	_, err := syncKeywords(context.Background(), d, engine.KeywordsSyncInput{OwnerKind: "company", OwnerID: "1"})
	assert.ErrorIs(t, err, careers.ErrUnknownOwnerKind)

	_, err = syncKeywords(context.Background(), d, engine.KeywordsSyncInput{OwnerKind: "student"})
	assert.ErrorContains(t, err, "owner_id")
}

func TestReindex(t *testing.T) {
	d, _ := testDeps(t)
	out := reindex(context.Background(), d, engine.KeywordsReindexInput{Documents: []engine.ReindexDocument{
		{OwnerKind: "student", OwnerID: "s1", Text: "go"},
		{OwnerKind: "job_post", OwnerID: "2", Text: "go rust"},
		{OwnerKind: "alumni", OwnerID: "3", Text: "go"},
		{OwnerKind: " Student ", OwnerID: "s4", Text: "sql"},
	}})
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 3, out.Changed)
	assert.Equal(t, 1, out.Failed)
	assert.Zero(t, out.Skipped)
	assert.Equal(t, out.Total, out.Changed+out.Unchanged+out.Failed+out.Skipped)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "alumni")

	got, err := getKeywords(context.Background(), d, engine.KeywordsOwnerInput{OwnerKind: "student", OwnerID: "s4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sql"}, got.Keywords)
}

func TestRecommendJobs(t *testing.T) {
	ctx := context.Background()
	d, store := testDeps(t)

	require.NoError(t, store.PutStudent(ctx, "s1"))
	require.NoError(t, store.PutJobPost(ctx, careers.JobPost{ID: "7"}))
	require.NoError(t, store.PutJobPost(ctx, careers.JobPost{ID: "8"}))
	_, err := syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "student", OwnerID: "s1", Text: "go sql"})
	require.NoError(t, err)
	_, err = syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "job_post", OwnerID: "7", Text: "go"})
	require.NoError(t, err)
	_, err = syncKeywords(ctx, d, engine.KeywordsSyncInput{OwnerKind: "job_post", OwnerID: "8", Text: "go sql"})
	require.NoError(t, err)

	out, err := recommendJobs(ctx, d, engine.JobsRecommendInput{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, out.Jobs, 2)
	assert.Equal(t, "8", out.Jobs[0].JobPostID)
	assert.InDelta(t, 1.0, out.Jobs[0].Score, 1e-12)
	assert.InDelta(t, 0.5, out.Jobs[1].Score, 1e-12)

	_, err = recommendJobs(ctx, d, engine.JobsRecommendInput{StudentID: "ghost"})
	assert.ErrorIs(t, err, careers.ErrNotFound)

	_, err = recommendJobs(ctx, d, engine.JobsRecommendInput{})
	assert.Error(t, err)
}
