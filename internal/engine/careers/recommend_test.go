package careers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecommender(levels []LevelOfStudy) (*Recommender, *memStore) {
	students := newMemStore(OwnerStudent)
	students.sets["s1"] = NewSet("python", "sql", "cloud")
	cat := &memCatalog{
		levels: map[string][]LevelOfStudy{"s1": levels},
		posts: []JobPostKeywords{
			{JobPostID: "1", Keywords: NewSet("python", "sql", "cloud")},     // 1.0
			{JobPostID: "2", Keywords: NewSet("python", "java")},             // 0.25
			{JobPostID: "3", Keywords: NewSet("marketing")},                  // 0
			{JobPostID: "10", Keywords: NewSet("python", "sql", "ml", "ai")}, // 0.4
			{JobPostID: "4", Keywords: NewSet("python", "sql", "ml", "ai")},  // 0.4
		},
		masters: map[string]bool{"1": true},
	}
	return NewRecommender(students, cat, 0), students
}

func TestRecommend_UndergraduateExcludesMasters(t *testing.T) {
	r, _ := newTestRecommender([]LevelOfStudy{LevelUndergraduate})
	got, err := r.RecommendScored(context.Background(), "s1")
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, rec := range got {
		ids[i] = rec.JobPostID
	}
	// 4 and 10 tie at 0.4 and sort by numeric id; 3 scores 0 and is dropped.
	assert.Equal(t, []string{"4", "10", "2"}, ids)
	assert.InDelta(t, 0.4, got[0].Score, 1e-12)
	assert.InDelta(t, 0.25, got[2].Score, 1e-12)
}

func TestRecommend_PostgraduateSeesMasters(t *testing.T) {
	for _, level := range []LevelOfStudy{LevelPostgraduate, LevelPhD} {
		r, _ := newTestRecommender([]LevelOfStudy{LevelFoundation, level})
		ids, err := r.Recommend(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "4", "10", "2"}, ids, string(level))
	}
}

func TestRecommend_NoDegreeExcludesMasters(t *testing.T) {
	r, _ := newTestRecommender(nil)
	ids, err := r.Recommend(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotContains(t, ids, "1")
}

func TestRecommend_UnknownStudent(t *testing.T) {
	r, _ := newTestRecommender(nil)
	_, err := r.Recommend(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommend_NoKeywords(t *testing.T) {
	r, students := newTestRecommender([]LevelOfStudy{LevelPhD})
	delete(students.sets, "s1")
	ids, err := r.Recommend(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecommend_Limit(t *testing.T) {
	students := newMemStore(OwnerStudent)
	students.sets["s1"] = NewSet("go")
	cat := &memCatalog{levels: map[string][]LevelOfStudy{"s1": {LevelUndergraduate}}}
	for i := range 25 {
		cat.posts = append(cat.posts, JobPostKeywords{JobPostID: fmt.Sprint(i), Keywords: NewSet("go")})
	}

	ids, err := NewRecommender(students, cat, 0).Recommend(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, ids, DefaultRecommendLimit)
	assert.Equal(t, "0", ids[0])
	assert.Equal(t, "9", ids[9])
}

func TestExcludeMasters(t *testing.T) {
	assert.True(t, excludeMasters(nil))
	assert.True(t, excludeMasters([]LevelOfStudy{LevelFoundation}))
	assert.True(t, excludeMasters([]LevelOfStudy{LevelUndergraduate}))
	assert.False(t, excludeMasters([]LevelOfStudy{LevelPostgraduate}))
	assert.False(t, excludeMasters([]LevelOfStudy{LevelUndergraduate, LevelPhD}))
}
