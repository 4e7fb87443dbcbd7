package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/BCJonkhout/nlp-project/internal/model"
)

// DBFileName is the SQLite file created inside the data directory.
const DBFileName = "corpuscrawl.db"

// CrawlDB provides SQLite-based storage for crawl sessions.
// It manages connection pooling and provides methods for CRUD operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; extra connections buy nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the location of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Sessions store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_domain TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_fetched INTEGER NOT NULL,
		urls_visited INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		seeds INTEGER NOT NULL,
		max_pages INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		throttle_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_domain ON crawl_sessions(base_domain);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON crawl_sessions(started_at);

	-- Pages store what each session fetched; text_hash enables change
	-- detection without keeping the text itself
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES crawl_sessions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT,
		status_code INTEGER,
		content_type TEXT,
		depth INTEGER NOT NULL,
		text_hash TEXT,
		text_len INTEGER NOT NULL,
		fetched_at DATETIME NOT NULL,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Session is a stored crawl session record.
type Session struct {
	ID           int64
	BaseDomain   string
	StartedAt    time.Time
	Duration     time.Duration
	PagesFetched int
	URLsVisited  int
	ErrorCount   int
	Settings     model.CrawlSettings
}

// SaveSession stores the crawl result and its pages in one transaction,
// returning the new session ID.
func (cdb *CrawlDB) SaveSession(ctx context.Context, result *model.CrawlResult, settings model.CrawlSettings) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_sessions
		(base_domain, started_at, duration_ms, pages_fetched, urls_visited, error_count,
		 seeds, max_pages, max_depth, workers, throttle_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.BaseDomain,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.Duration.Milliseconds(),
		len(result.Pages),
		len(result.Visited),
		len(result.Errors),
		settings.Seeds,
		settings.MaxPages,
		settings.MaxDepth,
		settings.Workers,
		settings.Throttle.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (session_id, url, title, status_code, content_type, depth, text_hash, text_len, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		title = excluded.title,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		depth = excluded.depth,
		text_hash = excluded.text_hash,
		text_len = excluded.text_len,
		fetched_at = excluded.fetched_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i := range result.Pages {
		page := &result.Pages[i]
		if _, err := stmt.ExecContext(ctx,
			sessionID,
			page.URL,
			page.Title,
			page.StatusCode,
			page.ContentType,
			page.Depth,
			page.TextHash(),
			len(page.Text),
			page.FetchedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return sessionID, nil
}

// ListSessions returns all stored sessions, newest first. An empty
// baseDomain returns sessions for every domain.
func (cdb *CrawlDB) ListSessions(ctx context.Context, baseDomain string) ([]Session, error) {
	query := `
	SELECT id, base_domain, started_at, duration_ms, pages_fetched, urls_visited, error_count,
	       seeds, max_pages, max_depth, workers, throttle_ms
	FROM crawl_sessions`
	args := []any{}
	if baseDomain != "" {
		query += ` WHERE base_domain = ?`
		args = append(args, baseDomain)
	}
	query += ` ORDER BY started_at DESC, id DESC`

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves one session by ID. Returns (nil, nil) when the
// session does not exist, so callers can distinguish absence from
// failure.
func (cdb *CrawlDB) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := cdb.db.QueryRowContext(ctx, `
	SELECT id, base_domain, started_at, duration_ms, pages_fetched, urls_visited, error_count,
	       seeds, max_pages, max_depth, workers, throttle_ms
	FROM crawl_sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return &s, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var s Session
	var startedAt string
	var durationMS, throttleMS int64

	err := row.Scan(
		&s.ID,
		&s.BaseDomain,
		&startedAt,
		&durationMS,
		&s.PagesFetched,
		&s.URLsVisited,
		&s.ErrorCount,
		&s.Settings.Seeds,
		&s.Settings.MaxPages,
		&s.Settings.MaxDepth,
		&s.Settings.Workers,
		&throttleMS,
	)
	if err != nil {
		return Session{}, err
	}

	s.StartedAt = parseTimestamp(startedAt)
	s.Duration = time.Duration(durationMS) * time.Millisecond
	s.Settings.Throttle = time.Duration(throttleMS) * time.Millisecond
	return s, nil
}

// PageRecord is a stored page row, without the text body.
type PageRecord struct {
	URL         string
	Title       string
	StatusCode  int
	ContentType string
	Depth       int
	TextHash    string
	TextLen     int
	FetchedAt   time.Time
}

// SessionPages returns the pages of a session ordered by URL.
func (cdb *CrawlDB) SessionPages(ctx context.Context, sessionID int64) ([]PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, title, status_code, content_type, depth, text_hash, text_len, fetched_at
	FROM pages WHERE session_id = ? ORDER BY url`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		var fetchedAt string
		if err := rows.Scan(&p.URL, &p.Title, &p.StatusCode, &p.ContentType, &p.Depth, &p.TextHash, &p.TextLen, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.FetchedAt = parseTimestamp(fetchedAt)
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}
	return pages, nil
}

// SessionHashes returns a URL-to-text-hash map for a session, the input
// for change detection between two runs.
func (cdb *CrawlDB) SessionHashes(ctx context.Context, sessionID int64) (map[string]string, error) {
	pages, err := cdb.SessionPages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	hashes := make(map[string]string, len(pages))
	for _, p := range pages {
		hashes[p.URL] = p.TextHash
	}
	return hashes, nil
}

// LatestSessions returns up to limit most recent sessions for a domain,
// newest first.
func (cdb *CrawlDB) LatestSessions(ctx context.Context, baseDomain string, limit int) ([]Session, error) {
	sessions, err := cdb.ListSessions(ctx, baseDomain)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// timestampFormats covers the representations SQLite hands back
// depending on how the value was written.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Zero time rather than an error; a bad timestamp should not make
	// session history unreadable.
	return time.Time{}
}
