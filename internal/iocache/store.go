package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
	"github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the commit cache.
const (
	commitTable = "commit_cache"
	repoTable   = "repo_mapping"
)

// CommitStoreImpl keeps the commit ledger and the repository cursors in a SQL database.
type CommitStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.CommitStore = &CommitStoreImpl{} // Compile-time check

// NewCommitStore opens the database for backend, applies pending migrations and returns the store.
// The none backend returns an in-memory store.
func NewCommitStore(backend schema.DatabaseBackend, connStr string) (contract.CommitStore, error) {
	if backend == schema.NoneBackend {
		return NewMemoryStore(), nil
	}

	// Migrations run on their own connection so no driver keeps one pinned.
	mdb, _, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	_, err = runMigrations(mdb, backend, -1)
	_ = mdb.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to migrate %s cache: %w", backend, err)
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	return &CommitStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// openDB opens and pings the database for backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, driverName, nil
}

// rebind converts ? placeholders into $n for PostgreSQL.
func (s *CommitStoreImpl) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// LoadCursor returns the last synced hash of a repository, "" before the first sync.
func (s *CommitStoreImpl) LoadCursor(ctx context.Context, tag, repo string) (string, error) {
	query := fmt.Sprintf("SELECT last_commit_hash FROM %s WHERE tag = ? AND repo_name = ?", quoteTableName(repoTable, s.backend))
	var cursor sql.NullString
	err := s.db.QueryRowContext(ctx, s.rebind(query), tag, repo).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load cursor of %s/%s: %w", tag, repo, err)
	}
	return strings.TrimSpace(cursor.String), nil
}

// AppendNewCommits inserts the commits of one pass in a single transaction.
func (s *CommitStoreImpl) AppendNewCommits(ctx context.Context, tag, repo string, commits []schema.Commit, cutoff int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (tag, repo, commit_hash, commit_timestamp, files_changed, insertions, deletions)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(commitTable, s.backend))
	stmt, err := tx.PrepareContext(ctx, s.rebind(query))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	stored := 0
	for _, c := range commits {
		if c.Ignore || c.Timestamp < cutoff {
			continue
		}
		if _, err := stmt.ExecContext(ctx, tag, repo, c.Hash, c.Timestamp, c.FilesChanged, c.Insertions, c.Deletions); err != nil {
			if isUniqueViolation(err) {
				return 0, &IntegrityError{Tag: tag, Repo: repo, Hash: c.Hash, Err: err}
			}
			return 0, fmt.Errorf("failed to insert commit %s: %w", c.Hash, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %d commits of %s/%s: %w", stored, tag, repo, err)
	}
	return stored, nil
}

// AdvanceCursor stores hash as the newest synced commit of a registered repository.
func (s *CommitStoreImpl) AdvanceCursor(ctx context.Context, tag, repo, hash string) error {
	query := fmt.Sprintf("UPDATE %s SET last_commit_hash = ? WHERE tag = ? AND repo_name = ?", quoteTableName(repoTable, s.backend))
	res, err := s.db.ExecContext(ctx, s.rebind(query), hash, tag, repo)
	if err != nil {
		if isUniqueViolation(err) {
			return &IntegrityError{Tag: tag, Repo: repo, Hash: hash, Err: err}
		}
		return fmt.Errorf("failed to advance cursor of %s/%s: %w", tag, repo, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the value did not change.
	if _, err := s.LoadRepo(ctx, tag, repo); err != nil {
		return err
	}
	return nil
}

// ReadCommits returns cached commits. An empty repo selects every repository of tag
// and an empty tag selects every tag.
func (s *CommitStoreImpl) ReadCommits(ctx context.Context, tag, repo string) ([]schema.CachedCommit, error) {
	query := fmt.Sprintf("SELECT tag, repo, commit_hash, commit_timestamp, files_changed, insertions, deletions FROM %s",
		quoteTableName(commitTable, s.backend))
	var conds []string
	var args []any
	if tag != "" {
		conds = append(conds, "tag = ?")
		args = append(args, tag)
	}
	if repo != "" {
		conds = append(conds, "repo = ?")
		args = append(args, repo)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.CachedCommit
	for rows.Next() {
		var c schema.CachedCommit
		if err := rows.Scan(&c.Tag, &c.Repo, &c.Hash, &c.Timestamp, &c.FilesChanged, &c.Insertions, &c.Deletions); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		c.Hash = strings.TrimSpace(c.Hash)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commits: %w", err)
	}
	return out, nil
}

// UpsertRepo inserts the metadata row of a newly observed repository.
func (s *CommitStoreImpl) UpsertRepo(ctx context.Context, meta schema.RepoMeta) error {
	table := quoteTableName(repoTable, s.backend)
	cols := "(repo_id, tag, repo_name, default_branch, url, stars, watchers, forks, size, is_cloned, failed) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf("INSERT IGNORE INTO %s %s", table, cols)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("INSERT INTO %s %s ON CONFLICT (tag, repo_name) DO NOTHING", table, cols)
	default: // SQLite
		query = fmt.Sprintf("INSERT OR IGNORE INTO %s %s", table, cols)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		meta.ID, meta.Tag, meta.Name, meta.DefaultBranch, meta.URL,
		meta.Stars, meta.Watchers, meta.Forks, meta.Size, meta.IsCloned, meta.Failed)
	if err != nil {
		return fmt.Errorf("failed to upsert repository %s/%s: %w", meta.Tag, meta.Name, err)
	}
	return nil
}

// UpdateRepoState writes is_cloned and failed of an existing row, and default_branch when known.
func (s *CommitStoreImpl) UpdateRepoState(ctx context.Context, meta schema.RepoMeta) error {
	query := fmt.Sprintf("UPDATE %s SET is_cloned = ?, failed = ? WHERE tag = ? AND repo_name = ?", quoteTableName(repoTable, s.backend))
	args := []any{meta.IsCloned, meta.Failed, meta.Tag, meta.Name}
	if meta.DefaultBranch != "" {
		query = fmt.Sprintf("UPDATE %s SET is_cloned = ?, failed = ?, default_branch = ? WHERE tag = ? AND repo_name = ?", quoteTableName(repoTable, s.backend))
		args = []any{meta.IsCloned, meta.Failed, meta.DefaultBranch, meta.Tag, meta.Name}
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("failed to update state of %s/%s: %w", meta.Tag, meta.Name, err)
	}
	return nil
}

const repoColumns = "repo_id, tag, repo_name, default_branch, url, stars, watchers, forks, size, is_cloned, failed, last_commit_hash"

// LoadRepo returns the metadata row for tag/name or ErrRepoNotFound.
func (s *CommitStoreImpl) LoadRepo(ctx context.Context, tag, name string) (schema.RepoMeta, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE tag = ? AND repo_name = ?", repoColumns, quoteTableName(repoTable, s.backend))
	meta, err := scanRepo(s.db.QueryRowContext(ctx, s.rebind(query), tag, name))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.RepoMeta{}, fmt.Errorf("%s/%s: %w", tag, name, contract.ErrRepoNotFound)
	}
	if err != nil {
		return schema.RepoMeta{}, fmt.Errorf("failed to load repository %s/%s: %w", tag, name, err)
	}
	return meta, nil
}

// LoadRepos returns the metadata rows of tag, or of all tags when tag is empty.
func (s *CommitStoreImpl) LoadRepos(ctx context.Context, tag string) ([]schema.RepoMeta, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", repoColumns, quoteTableName(repoTable, s.backend))
	var args []any
	if tag != "" {
		query += " WHERE tag = ?"
		args = append(args, tag)
	}
	query += " ORDER BY tag, repo_name"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.RepoMeta
	for rows.Next() {
		meta, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepo(row rowScanner) (schema.RepoMeta, error) {
	var meta schema.RepoMeta
	var cursor sql.NullString
	err := row.Scan(&meta.ID, &meta.Tag, &meta.Name, &meta.DefaultBranch, &meta.URL,
		&meta.Stars, &meta.Watchers, &meta.Forks, &meta.Size, &meta.IsCloned, &meta.Failed, &cursor)
	meta.LastCommitHash = strings.TrimSpace(cursor.String)
	return meta, err
}

// Close closes the underlying DB connection.
func (s *CommitStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the commit cache.
func (s *CommitStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}
	status.SchemaVersion = schemaVersion(s.db, s.backend)

	commits := quoteTableName(commitTable, s.backend)
	repos := quoteTableName(repoTable, s.backend)

	row := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", commits))
	if err := row.Scan(&status.TotalCommits); err != nil {
		return status, fmt.Errorf("failed to get total commits: %w", err)
	}

	row = s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(last_commit_hash) FROM %s", repos))
	if err := row.Scan(&status.TotalRepos, &status.SyncedRepos); err != nil {
		return status, fmt.Errorf("failed to get repository counts: %w", err)
	}

	if status.TotalCommits > 0 {
		var oldest, newest int64
		row = s.db.QueryRow(fmt.Sprintf("SELECT MIN(commit_timestamp), MAX(commit_timestamp) FROM %s", commits))
		if err := row.Scan(&oldest, &newest); err != nil {
			return status, fmt.Errorf("failed to get commit time range: %w", err)
		}
		status.OldestCommitTime = time.Unix(oldest, 0)
		status.NewestCommitTime = time.Unix(newest, 0)
	}

	status.TableSizeBytes = s.tableSize(status.TotalCommits)
	return status, nil
}

// tableSize estimates the on-disk size of the ledger.
func (s *CommitStoreImpl) tableSize(totalCommits int) int64 {
	fallback := int64(totalCommits) * 100 // Rough estimate
	var size int64

	switch s.backend {
	case schema.SQLiteBackend:
		row := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		// Use information_schema for MySQL
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		row := s.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, commitTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		row := s.db.QueryRow("SELECT pg_total_relation_size($1)", commitTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size
	}
	return fallback
}
