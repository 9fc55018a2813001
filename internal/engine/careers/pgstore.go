package careers

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore is a Backend over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgresStore creates a pgx pool and runs schema migrations.
func ConnectPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if _, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, "postgres ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &PostgresStore{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("keyword postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

// Close closes the pool.
func (db *PostgresStore) Close() error {
	db.pool.Close()
	return nil
}

func (db *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// pgQueryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Keywords returns the KeywordStore for kind.
func (db *PostgresStore) Keywords(kind OwnerKind) (KeywordStore, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return &pgKeywords{q: db.pool, pool: db.pool, t: t}, nil
}

type pgKeywords struct {
	q    pgQueryer
	pool *pgxpool.Pool // nil when bound to a tx
	t    keywordTable
}

func (k *pgKeywords) Kind() OwnerKind { return k.t.kind }

func (k *pgKeywords) Fetch(ctx context.Context, ownerID string) (Set, error) {
	rows, err := k.q.Query(ctx,
		fmt.Sprintf(`SELECT keyword FROM %s WHERE %s = $1`, k.t.name, k.t.ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s keywords: %w", k.t.kind, err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("fetch %s keywords: %w", k.t.kind, err)
	}
	return NewSet(words...), nil
}

func (k *pgKeywords) Create(ctx context.Context, ownerID string, keywords Set) error {
	if len(keywords) == 0 {
		return nil
	}
	_, err := k.q.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, keyword)
			SELECT $1, unnest($2::text[])
			ON CONFLICT (%s, keyword) DO NOTHING`, k.t.name, k.t.ownerCol, k.t.ownerCol),
		ownerID, keywords.Sorted())
	if err != nil {
		return fmt.Errorf("create %s keywords: %w", k.t.kind, err)
	}
	return nil
}

func (k *pgKeywords) Delete(ctx context.Context, ownerID string, keywords Set) error {
	if len(keywords) == 0 {
		return nil
	}
	_, err := k.q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND keyword = ANY($2)`, k.t.name, k.t.ownerCol),
		ownerID, keywords.Sorted())
	if err != nil {
		return fmt.Errorf("delete %s keywords: %w", k.t.kind, err)
	}
	return nil
}

func (k *pgKeywords) DeleteAll(ctx context.Context, ownerID string) error {
	_, err := k.q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, k.t.name, k.t.ownerCol), ownerID)
	if err != nil {
		return fmt.Errorf("delete all %s keywords: %w", k.t.kind, err)
	}
	return nil
}

// InTx runs fn in a transaction holding a transaction-scoped advisory lock
// on the owner, so concurrent syncs of the same owner run one after another.
func (k *pgKeywords) InTx(ctx context.Context, ownerID string, fn func(KeywordStore) error) error {
	if k.pool == nil {
		return fn(k)
	}
	return pgx.BeginFunc(ctx, k.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
			string(k.t.kind)+":"+ownerID); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		return fn(&pgKeywords{q: tx, t: k.t})
	})
}

// StudentDegreeLevels implements Catalog.
func (db *PostgresStore) StudentDegreeLevels(ctx context.Context, studentID string) ([]LevelOfStudy, error) {
	var id string
	err := db.pool.QueryRow(ctx, `SELECT id FROM student WHERE id = $1`, studentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("student degree levels: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT d.degree_level FROM student_degree sd
		 JOIN degree d ON d.id = sd.degree_id
		 WHERE sd.student_id = $1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("student degree levels: %w", err)
	}
	levels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("student degree levels: %w", err)
	}
	out := make([]LevelOfStudy, len(levels))
	for i, l := range levels {
		out[i] = LevelOfStudy(l)
	}
	return out, nil
}

// EligibleJobPosts implements Catalog.
func (db *PostgresStore) EligibleJobPosts(ctx context.Context, excludeMasters bool) ([]JobPostKeywords, error) {
	query := `SELECT k.job_post_id, k.keyword FROM job_post_keyword k
		JOIN job_post j ON j.id = k.job_post_id
		WHERE j.visibility = $1 AND j.status = $2`
	args := []any{VisibilityPublic, StatusOngoing}
	if excludeMasters {
		query += ` AND j.degree_required <> $3`
		args = append(args, DegreeMasters)
	}
	query += ` ORDER BY k.job_post_id, k.id`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eligible job posts: %w", err)
	}
	defer rows.Close()

	g := newPostGrouper()
	for rows.Next() {
		var id, kw string
		if err := rows.Scan(&id, &kw); err != nil {
			return nil, fmt.Errorf("eligible job posts: scan: %w", err)
		}
		g.add(id, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eligible job posts: %w", err)
	}
	return g.posts, nil
}

// PutStudent inserts a student if it does not exist.
func (db *PostgresStore) PutStudent(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO student (id) VALUES ($1) ON CONFLICT DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("put student: %w", err)
	}
	return nil
}

// PutDegree inserts a degree with its level if it does not exist.
func (db *PostgresStore) PutDegree(ctx context.Context, id string, level LevelOfStudy) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO degree (id, degree_level) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, string(level))
	if err != nil {
		return fmt.Errorf("put degree: %w", err)
	}
	return nil
}

// LinkDegree links a student to a degree.
func (db *PostgresStore) LinkDegree(ctx context.Context, studentID, degreeID string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO student_degree (student_id, degree_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, studentID, degreeID)
	if err != nil {
		return fmt.Errorf("link degree: %w", err)
	}
	return nil
}

// PutJobPost inserts or updates the eligibility attributes of a job post.
func (db *PostgresStore) PutJobPost(ctx context.Context, p JobPost) error {
	p = p.withDefaults()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_post (id, visibility, status, degree_required) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET visibility = EXCLUDED.visibility, status = EXCLUDED.status,
		 degree_required = EXCLUDED.degree_required`,
		p.ID, p.Visibility, p.Status, p.DegreeRequired)
	if err != nil {
		return fmt.Errorf("put job post: %w", err)
	}
	return nil
}
