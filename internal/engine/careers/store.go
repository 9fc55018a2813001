package careers

import (
	"context"
	"fmt"
	"strings"
)

// KeywordStore reads and writes the persisted keywords of one owner kind.
// Owners are identified by ID only; the kind is fixed by the store.
type KeywordStore interface {
	Kind() OwnerKind
	Fetch(ctx context.Context, ownerID string) (Set, error)
	Create(ctx context.Context, ownerID string, keywords Set) error
	Delete(ctx context.Context, ownerID string, keywords Set) error
	// DeleteAll removes every keyword of the owner; used when the owner is deleted.
	DeleteAll(ctx context.Context, ownerID string) error
}

// Transactional is implemented by stores that can run the read-diff-write
// of one owner atomically and serialised against other writers of the
// same owner.
type Transactional interface {
	InTx(ctx context.Context, ownerID string, fn func(KeywordStore) error) error
}

// JobPostKeywords is an eligible job post with its keyword set.
type JobPostKeywords struct {
	JobPostID string
	Keywords  Set
}

// Catalog is the read-only view of the surrounding CRUD schema needed for
// recommendations.
type Catalog interface {
	// StudentDegreeLevels returns the levels of every degree linked to the
	// student, or ErrNotFound if the student does not exist.
	StudentDegreeLevels(ctx context.Context, studentID string) ([]LevelOfStudy, error)
	// EligibleJobPosts returns public, ongoing job posts with their
	// keywords, without posts requiring a master's degree when excludeMasters.
	EligibleJobPosts(ctx context.Context, excludeMasters bool) ([]JobPostKeywords, error)
}

// Stores resolves the KeywordStore for an owner kind.
type Stores interface {
	Keywords(kind OwnerKind) (KeywordStore, error)
}

// Backend is a full storage implementation: keyword tables plus catalog.
type Backend interface {
	Stores
	Catalog
	Close() error
}

var (
	_ Backend       = (*SQLStore)(nil)
	_ Backend       = (*PostgresStore)(nil)
	_ Transactional = (*sqlKeywords)(nil)
	_ Transactional = (*pgKeywords)(nil)
)

// OpenBackend opens the storage backend named by driver: sqlite (default),
// mysql or postgres.
func OpenBackend(ctx context.Context, driver, dsn string) (Backend, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite":
		return OpenSQLStore(ctx, "sqlite", dsn)
	case "mysql":
		return OpenSQLStore(ctx, "mysql", dsn)
	case "postgres", "postgresql", "pgx":
		return ConnectPostgresStore(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown store driver %q (valid: sqlite, mysql, postgres)", driver)
}
