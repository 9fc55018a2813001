package careers

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/anatolykoptev/go_careers/internal/engine"
)

// DefaultRecommendLimit is the number of job posts returned per student.
const DefaultRecommendLimit = 10

// Recommendation is a job post with its similarity to the student.
type Recommendation struct {
	JobPostID string  `json:"job_post_id"`
	Score     float64 `json:"score"`
}

// Recommender ranks eligible job posts for a student by Jaccard
// similarity of keyword sets.
type Recommender struct {
	students KeywordStore
	catalog  Catalog
	limit    int
}

// NewRecommender returns a Recommender reading student keywords from
// students and job posts from catalog. limit <= 0 selects
// DefaultRecommendLimit.
func NewRecommender(students KeywordStore, catalog Catalog, limit int) *Recommender {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	return &Recommender{students: students, catalog: catalog, limit: limit}
}

// Recommend returns the ids of the best matching job posts, best first.
func (r *Recommender) Recommend(ctx context.Context, studentID string) ([]string, error) {
	scored, err := r.RecommendScored(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(scored))
	for i, rec := range scored {
		ids[i] = rec.JobPostID
	}
	return ids, nil
}

// RecommendScored returns up to limit eligible job posts with a positive
// score, sorted by score descending and job post id ascending.
//
// Posts requiring a master's degree are only considered when the
// student's highest level is Postgraduate or PhD. A student with no
// recognised degree is treated like an undergraduate. ErrNotFound is
// returned for an unknown student.
func (r *Recommender) RecommendScored(ctx context.Context, studentID string) ([]Recommendation, error) {
	engine.IncrRecommendations()

	levels, err := r.catalog.StudentDegreeLevels(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	mine, err := r.students.Fetch(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("recommend: student keywords: %w", err)
	}

	posts, err := r.catalog.EligibleJobPosts(ctx, excludeMasters(levels))
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	out := make([]Recommendation, 0, len(posts))
	for _, p := range posts {
		if score := Jaccard(mine, p.Keywords); score > 0 {
			out = append(out, Recommendation{JobPostID: p.JobPostID, Score: score})
		}
	}
	slices.SortFunc(out, func(a, b Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return compareIDs(a.JobPostID, b.JobPostID)
	})
	if len(out) > r.limit {
		out = out[:r.limit]
	}

	slog.Debug("recommendations computed",
		slog.String("student", studentID),
		slog.Int("keywords", len(mine)),
		slog.Int("candidates", len(posts)),
		slog.Int("returned", len(out)))
	return out, nil
}

// excludeMasters reports whether master's-level posts are out of reach.
func excludeMasters(levels []LevelOfStudy) bool {
	highest, ok := HighestLevel(levels)
	if !ok {
		return true
	}
	return highest.Rank() < LevelPostgraduate.Rank()
}
