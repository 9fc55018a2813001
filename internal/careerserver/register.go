// Package careerserver exposes the keyword engine as MCP tools.
package careerserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_careers/internal/engine/careers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Extractor is the read-only extraction surface used by keywords_extract.
type Extractor interface {
	Extract(ctx context.Context, text string) []string
	TopN(text string) int
}

// Deps are the engine components the tools call into.
type Deps struct {
	Extractor   Extractor
	Sync        *careers.Synchronizer
	Stores      careers.Stores
	Recommender *careers.Recommender
	Reindexer   *careers.Reindexer
}

// RegisterTools registers the keyword and recommendation tools on server:
// keywords_extract, keywords_sync, keywords_get, keywords_delete,
// keywords_reindex, jobs_recommend.
func RegisterTools(server *mcp.Server, d Deps) int {
	registerKeywordsExtract(server, d)
	registerKeywordsSync(server, d)
	registerKeywordsGet(server, d)
	registerKeywordsDelete(server, d)
	registerKeywordsReindex(server, d)
	registerJobsRecommend(server, d)
	return 6
}

// storeFor resolves the keyword store named by an owner_kind/owner_id pair.
func (d Deps) storeFor(kind, ownerID string) (careers.KeywordStore, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner_id is required")
	}
	k, err := careers.ParseOwnerKind(kind)
	if err != nil {
		return nil, err
	}
	return d.Stores.Keywords(k)
}
