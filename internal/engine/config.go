package engine

import "time"

// Config holds all engine configuration. main builds it from the
// environment and passes the fields to the constructors that need them.
type Config struct {
	StoreDriver          string // sqlite, mysql, postgres
	DatabaseURL          string // DSN; for sqlite a file path (empty = ~/.go_careers/keywords.db)
	KeywordsConfigPath   string // optional YAML with ranking overrides
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	ReindexWorkers       int
	ReindexRate          float64 // storage syncs per second during reindex; <= 0 = unlimited
	RecommendLimit       int
}
