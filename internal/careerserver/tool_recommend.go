package careerserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/anatolykoptev/go_careers/internal/engine/careers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerJobsRecommend(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "jobs_recommend",
		Description: "Recommend up to 10 public, ongoing job posts for a student, ranked by Jaccard similarity between the student's keywords and each post's keywords. Posts requiring a master's degree are only included for postgraduate and PhD students.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.JobsRecommendInput) (*mcp.CallToolResult, engine.JobsRecommendOutput, error) {
		out, err := recommendJobs(ctx, d, input)
		return nil, out, err
	})
}

func recommendJobs(ctx context.Context, d Deps, input engine.JobsRecommendInput) (engine.JobsRecommendOutput, error) {
	if input.StudentID == "" {
		return engine.JobsRecommendOutput{}, fmt.Errorf("student_id is required")
	}

	var recs []careers.Recommendation
	err := engine.TrackOperation(ctx, "jobs_recommend", func(ctx context.Context) error {
		var err error
		recs, err = d.Recommender.RecommendScored(ctx, input.StudentID)
		return err
	})
	if err != nil {
		return engine.JobsRecommendOutput{}, err
	}

	out := engine.JobsRecommendOutput{StudentID: input.StudentID, Jobs: make([]engine.JobRecommendation, len(recs))}
	for i, r := range recs {
		out.Jobs[i] = engine.JobRecommendation{JobPostID: r.JobPostID, Score: r.Score}
	}
	return out, nil
}
