package engine

// --- Keyword tool types ---

type KeywordsExtractInput struct {
	Text string `json:"text" jsonschema:"Free text to extract keywords from (job description, student biography)"`
}

// KeywordsExtractOutput is the structured output for keywords_extract.
type KeywordsExtractOutput struct {
	Keywords   []string `json:"keywords"`
	TopN       int      `json:"top_n"`
	TextLength int      `json:"text_length"`
}

type KeywordsSyncInput struct {
	OwnerKind string `json:"owner_kind" jsonschema:"Owner of the text: job_post or student"`
	OwnerID   string `json:"owner_id" jsonschema:"Job post id or student id"`
	Text      string `json:"text" jsonschema:"Current text of the owner; its keywords replace the stored ones"`
	OldText   string `json:"old_text,omitempty" jsonschema:"Previous text; when equal to text the sync is skipped"`
}

// KeywordsSyncOutput is the structured output for keywords_sync.
type KeywordsSyncOutput struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
	Skipped   bool     `json:"skipped,omitempty"`
}

type KeywordsOwnerInput struct {
	OwnerKind string `json:"owner_kind" jsonschema:"Owner of the keywords: job_post or student"`
	OwnerID   string `json:"owner_id" jsonschema:"Job post id or student id"`
}

// KeywordsGetOutput is the structured output for keywords_get and keywords_delete.
type KeywordsGetOutput struct {
	OwnerKind string   `json:"owner_kind"`
	OwnerID   string   `json:"owner_id"`
	Keywords  []string `json:"keywords"`
}

type ReindexDocument struct {
	OwnerKind string `json:"owner_kind" jsonschema:"job_post or student"`
	OwnerID   string `json:"owner_id" jsonschema:"Job post id or student id"`
	Text      string `json:"text" jsonschema:"Current text of the owner"`
}

type KeywordsReindexInput struct {
	Documents []ReindexDocument `json:"documents" jsonschema:"Owners to re-synchronise with their current text"`
}

// KeywordsReindexOutput is the structured output for keywords_reindex.
type KeywordsReindexOutput struct {
	Total     int      `json:"total"`
	Changed   int      `json:"changed"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// --- Recommendation tool types ---

type JobsRecommendInput struct {
	StudentID string `json:"student_id" jsonschema:"Student id to recommend job posts for"`
}

// JobRecommendation is one recommended job post.
type JobRecommendation struct {
	JobPostID string  `json:"job_post_id"`
	Score     float64 `json:"score"`
}

// JobsRecommendOutput is the structured output for jobs_recommend.
type JobsRecommendOutput struct {
	StudentID string              `json:"student_id"`
	Jobs      []JobRecommendation `json:"jobs"`
}
