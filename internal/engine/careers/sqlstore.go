package careers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_careers/internal/engine"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// keywordTable describes the table holding one owner kind's keywords.
type keywordTable struct {
	kind     OwnerKind
	name     string
	ownerCol string
}

var (
	jobPostKeywordTable = keywordTable{kind: OwnerJobPost, name: "job_post_keyword", ownerCol: "job_post_id"}
	studentKeywordTable = keywordTable{kind: OwnerStudent, name: "student_keyword", ownerCol: "student_id"}
)

func tableFor(kind OwnerKind) (keywordTable, error) {
	switch kind {
	case OwnerJobPost:
		return jobPostKeywordTable, nil
	case OwnerStudent:
		return studentKeywordTable, nil
	}
	return keywordTable{}, fmt.Errorf("%w: %q", ErrUnknownOwnerKind, kind)
}

// dialect captures the SQL differences between the database/sql drivers.
type dialect struct {
	driver        string
	schema        []string
	insertIgnore  string
	upsertJobPost string
	now           func() any
	// lock serialises writers of one owner on conn until release; nil when
	// the connection pool already guarantees it.
	lock func(ctx context.Context, conn *sql.Conn, key string) (release func(), err error)
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS student (
			id TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS degree (
			id           TEXT PRIMARY KEY,
			degree_level TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS student_degree (
			student_id TEXT NOT NULL,
			degree_id  TEXT NOT NULL,
			PRIMARY KEY (student_id, degree_id)
		)`,
		`CREATE TABLE IF NOT EXISTS job_post (
			id              TEXT PRIMARY KEY,
			visibility      TEXT NOT NULL DEFAULT 'public',
			status          TEXT NOT NULL DEFAULT 'ongoing',
			degree_required TEXT NOT NULL DEFAULT 'All grades'
		)`,
		`CREATE TABLE IF NOT EXISTS job_post_keyword (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			job_post_id TEXT NOT NULL,
			keyword     TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			UNIQUE (job_post_id, keyword)
		)`,
		`CREATE TABLE IF NOT EXISTS student_keyword (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id TEXT NOT NULL,
			keyword    TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (student_id, keyword)
		)`,
	},
	insertIgnore: "INSERT OR IGNORE INTO",
	upsertJobPost: `INSERT INTO job_post (id, visibility, status, degree_required) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET visibility = excluded.visibility, status = excluded.status,
		degree_required = excluded.degree_required`,
	now: func() any { return time.Now().UTC().Format(time.RFC3339) },
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS student (
			id VARCHAR(64) PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS degree (
			id           VARCHAR(64) PRIMARY KEY,
			degree_level VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS student_degree (
			student_id VARCHAR(64) NOT NULL,
			degree_id  VARCHAR(64) NOT NULL,
			PRIMARY KEY (student_id, degree_id)
		)`,
		`CREATE TABLE IF NOT EXISTS job_post (
			id              VARCHAR(64) PRIMARY KEY,
			visibility      VARCHAR(16) NOT NULL DEFAULT 'public',
			status          VARCHAR(16) NOT NULL DEFAULT 'ongoing',
			degree_required VARCHAR(64) NOT NULL DEFAULT 'All grades'
		)`,
		`CREATE TABLE IF NOT EXISTS job_post_keyword (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			job_post_id VARCHAR(64) NOT NULL,
			keyword     VARCHAR(100) NOT NULL,
			created_at  DATETIME NOT NULL,
			UNIQUE KEY uq_job_post_keyword (job_post_id, keyword)
		)`,
		`CREATE TABLE IF NOT EXISTS student_keyword (
			id         BIGINT AUTO_INCREMENT PRIMARY KEY,
			student_id VARCHAR(64) NOT NULL,
			keyword    VARCHAR(100) NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE KEY uq_student_keyword (student_id, keyword)
		)`,
	},
	insertIgnore: "INSERT IGNORE INTO",
	upsertJobPost: `INSERT INTO job_post (id, visibility, status, degree_required) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE visibility = VALUES(visibility), status = VALUES(status),
		degree_required = VALUES(degree_required)`,
	now:  func() any { return time.Now().UTC() },
	lock: mysqlNamedLock,
}

// mysqlNamedLock takes a connection-scoped named lock on conn. The lock
// must outlive the commit of any tx on conn.
func mysqlNamedLock(ctx context.Context, conn *sql.Conn, key string) (func(), error) {
	name := "kw:" + key
	if len(name) > 64 {
		name = engine.CacheKey(name)
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, 10)`, name).Scan(&got); err != nil {
		return nil, fmt.Errorf("get_lock: %w", err)
	}
	if got.Int64 != 1 {
		return nil, fmt.Errorf("get_lock %s: timeout", name)
	}
	return func() {
		var released sql.NullInt64
		_ = conn.QueryRowContext(context.WithoutCancel(ctx), `SELECT RELEASE_LOCK(?)`, name).Scan(&released)
	}, nil
}

// SQLStore is a Backend over database/sql, used with the sqlite and mysql drivers.
type SQLStore struct {
	db *sql.DB
	d  *dialect
}

// OpenSQLStore opens (or creates) the keyword database and applies the schema.
// driver is "sqlite" or "mysql". For sqlite an empty dsn selects
// ~/.go_careers/keywords.db.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var d *dialect
	switch driver {
	case "sqlite":
		d = &sqliteDialect
		if dsn == "" {
			dir := filepath.Join(os.Getenv("HOME"), ".go_careers")
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("keyword store: mkdir %s: %w", dir, err)
			}
			dsn = filepath.Join(dir, "keywords.db")
		}
	case "mysql":
		d = &mysqlDialect
		if dsn == "" {
			return nil, errors.New("keyword store: DATABASE_URL is required for mysql")
		}
	default:
		return nil, fmt.Errorf("keyword store: unsupported driver %q", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("keyword store: open db: %w", err)
	}
	if d.driver == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite: single writer
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if _, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, "keyword store ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("keyword store: ping: %w", err)
	}

	s := &SQLStore{db: db, d: d}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("keyword store: init schema: %w", err)
	}
	slog.Info("keyword store opened", slog.String("driver", d.driver))
	return s, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Keywords returns the KeywordStore for kind.
func (s *SQLStore) Keywords(kind OwnerKind) (KeywordStore, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return &sqlKeywords{q: s.db, db: s.db, d: s.d, t: t}, nil
}

// JobPosts returns the job post keyword store.
func (s *SQLStore) JobPosts() KeywordStore {
	return &sqlKeywords{q: s.db, db: s.db, d: s.d, t: jobPostKeywordTable}
}

// Students returns the student keyword store.
func (s *SQLStore) Students() KeywordStore {
	return &sqlKeywords{q: s.db, db: s.db, d: s.d, t: studentKeywordTable}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlKeywords is a KeywordStore bound to one table and either the pool or a tx.
type sqlKeywords struct {
	q  queryer
	db *sql.DB // nil when bound to a tx
	d  *dialect
	t  keywordTable
}

func (k *sqlKeywords) Kind() OwnerKind { return k.t.kind }

func (k *sqlKeywords) Fetch(ctx context.Context, ownerID string) (Set, error) {
	rows, err := k.q.QueryContext(ctx,
		fmt.Sprintf(`SELECT keyword FROM %s WHERE %s = ?`, k.t.name, k.t.ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s keywords: %w", k.t.kind, err)
	}
	defer rows.Close()

	set := make(Set)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("fetch %s keywords: scan: %w", k.t.kind, err)
		}
		set[kw] = struct{}{}
	}
	return set, rows.Err()
}

func (k *sqlKeywords) Create(ctx context.Context, ownerID string, keywords Set) error {
	if len(keywords) == 0 {
		return nil
	}
	words := keywords.Sorted()
	now := k.d.now()
	args := make([]any, 0, len(words)*3)
	values := make([]string, 0, len(words))
	for _, w := range words {
		values = append(values, "(?, ?, ?)")
		args = append(args, ownerID, w, now)
	}
	query := fmt.Sprintf(`%s %s (%s, keyword, created_at) VALUES %s`,
		k.d.insertIgnore, k.t.name, k.t.ownerCol, strings.Join(values, ", "))
	if _, err := k.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create %s keywords: %w", k.t.kind, err)
	}
	return nil
}

func (k *sqlKeywords) Delete(ctx context.Context, ownerID string, keywords Set) error {
	if len(keywords) == 0 {
		return nil
	}
	words := keywords.Sorted()
	args := make([]any, 0, len(words)+1)
	args = append(args, ownerID)
	for _, w := range words {
		args = append(args, w)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND keyword IN (%s)`,
		k.t.name, k.t.ownerCol, placeholders(len(words)))
	if _, err := k.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s keywords: %w", k.t.kind, err)
	}
	return nil
}

func (k *sqlKeywords) DeleteAll(ctx context.Context, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, k.t.name, k.t.ownerCol)
	if _, err := k.q.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("delete all %s keywords: %w", k.t.kind, err)
	}
	return nil
}

// InTx runs fn against a store bound to a new transaction. Where the
// dialect needs an owner lock it is taken on a dedicated connection before
// the tx begins and released only after the tx has committed or rolled back.
func (k *sqlKeywords) InTx(ctx context.Context, ownerID string, fn func(KeywordStore) error) error {
	if k.db == nil {
		return fn(k)
	}
	if k.d.lock == nil {
		return k.runTx(ctx, k.db, fn)
	}

	conn, err := k.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	release, err := k.d.lock(ctx, conn, string(k.t.kind)+":"+ownerID)
	if err != nil {
		return err
	}
	// Deferred after conn.Close, so it runs first: unlock, then hand the
	// connection back.
	defer release()
	return k.runTx(ctx, conn, fn)
}

// txBeginner is satisfied by *sql.DB and *sql.Conn.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func (k *sqlKeywords) runTx(ctx context.Context, b txBeginner, fn func(KeywordStore) error) error {
	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&sqlKeywords{q: tx, d: k.d, t: k.t}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// StudentDegreeLevels implements Catalog.
func (s *SQLStore) StudentDegreeLevels(ctx context.Context, studentID string) ([]LevelOfStudy, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM student WHERE id = ?`, studentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("student degree levels: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.degree_level FROM student_degree sd
		 JOIN degree d ON d.id = sd.degree_id
		 WHERE sd.student_id = ?`, studentID)
	if err != nil {
		return nil, fmt.Errorf("student degree levels: %w", err)
	}
	defer rows.Close()

	var levels []LevelOfStudy
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("student degree levels: scan: %w", err)
		}
		levels = append(levels, LevelOfStudy(l))
	}
	return levels, rows.Err()
}

// EligibleJobPosts implements Catalog.
func (s *SQLStore) EligibleJobPosts(ctx context.Context, excludeMasters bool) ([]JobPostKeywords, error) {
	query := `SELECT k.job_post_id, k.keyword FROM job_post_keyword k
		JOIN job_post j ON j.id = k.job_post_id
		WHERE j.visibility = ? AND j.status = ?`
	args := []any{VisibilityPublic, StatusOngoing}
	if excludeMasters {
		query += ` AND j.degree_required <> ?`
		args = append(args, DegreeMasters)
	}
	query += ` ORDER BY k.job_post_id, k.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// postGrouper collects (job_post_id, keyword) rows into per-post sets,
// keeping posts in first-seen order.
type postGrouper struct {
	posts []JobPostKeywords
	index map[string]int
}

func newPostGrouper() *postGrouper {
	return &postGrouper{index: make(map[string]int)}
}

func (g *postGrouper) add(id, kw string) {
	i, ok := g.index[id]
	if !ok {
		i = len(g.posts)
		g.index[id] = i
		g.posts = append(g.posts, JobPostKeywords{JobPostID: id, Keywords: make(Set)})
	}
	g.posts[i].Keywords[kw] = struct{}{}
}

// --- Catalog seeding: the CRUD layer owns these tables; the engine only
// writes them when running standalone and in tests. ---

// PutStudent inserts a student if it does not exist.
func (s *SQLStore) PutStudent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.d.insertIgnore+` student (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("put student: %w", err)
	}
	return nil
}

// PutDegree inserts a degree with its level if it does not exist.
func (s *SQLStore) PutDegree(ctx context.Context, id string, level LevelOfStudy) error {
	_, err := s.db.ExecContext(ctx, s.d.insertIgnore+` degree (id, degree_level) VALUES (?, ?)`, id, string(level))
	if err != nil {
		return fmt.Errorf("put degree: %w", err)
	}
	return nil
}

// LinkDegree links a student to a degree.
func (s *SQLStore) LinkDegree(ctx context.Context, studentID, degreeID string) error {
	_, err := s.db.ExecContext(ctx, s.d.insertIgnore+` student_degree (student_id, degree_id) VALUES (?, ?)`, studentID, degreeID)
	if err != nil {
		return fmt.Errorf("link degree: %w", err)
	}
	return nil
}

// PutJobPost inserts or updates the eligibility attributes of a job post.
func (s *SQLStore) PutJobPost(ctx context.Context, p JobPost) error {
	p = p.withDefaults()
	_, err := s.db.ExecContext(ctx, s.d.upsertJobPost, p.ID, p.Visibility, p.Status, p.DegreeRequired)
	if err != nil {
		return fmt.Errorf("put job post: %w", err)
	}
	return nil
}

// JobPost is the subset of job post columns the eligibility filter reads.
type JobPost struct {
	ID             string
	Visibility     string
	Status         string
	DegreeRequired string
}

func (p JobPost) withDefaults() JobPost {
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	if p.Status == "" {
		p.Status = StatusOngoing
	}
	if p.DegreeRequired == "" {
		p.DegreeRequired = DegreeAllGrades
	}
	return p
}
