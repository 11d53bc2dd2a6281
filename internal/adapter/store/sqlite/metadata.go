package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/domain"
)

// Schema creates the pull-request metadata cache table. Applying it is the
// migrate command's job; the store itself only detects its absence.
const Schema = `
CREATE TABLE IF NOT EXISTS pr_metadata_cache (
	api_base TEXT NOT NULL,
	owner TEXT NOT NULL,
	repo TEXT NOT NULL,
	pr_number INTEGER NOT NULL,
	title TEXT,
	state TEXT,
	html_url TEXT,
	author TEXT,
	etag TEXT,
	last_modified TEXT,
	fetched_at_unix INTEGER NOT NULL,
	expires_at_unix INTEGER NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	UNIQUE(api_base, owner, repo, pr_number)
);

CREATE INDEX IF NOT EXISTS idx_pr_metadata_expiry ON pr_metadata_cache(expires_at_unix);
`

// MetadataStore persists cached pull-request metadata in SQLite.
type MetadataStore struct {
	db *sql.DB
}

// NewMetadataStore opens the cache database at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewMetadataStore(dbPath string) (*MetadataStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, domain.NewError(domain.ErrConfiguration, "cache store path is blank")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, err, "open cache database %s", dbPath)
	}
	// One connection keeps :memory: databases coherent and serialises
	// writes the way the single-threaded update loop expects.
	db.SetMaxOpenConns(1)
	return &MetadataStore{db: db}, nil
}

// Migrate applies the cache schema. Exposed for the migrate command and
// for tests.
func (s *MetadataStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return domain.WrapError(domain.ErrWriteFailed, err, "apply cache schema")
	}
	return nil
}

// Get returns the cached row for the locator, or (nil, nil) on a miss.
func (s *MetadataStore) Get(ctx context.Context, locator github.PullRequestLocator) (*domain.CachedPullRequestMetadata, error) {
	query := `
		SELECT title, state, html_url, author, etag, last_modified, fetched_at_unix, expires_at_unix
		FROM pr_metadata_cache
		WHERE api_base = ? AND owner = ? AND repo = ? AND pr_number = ?
	`

	var entry domain.CachedPullRequestMetadata
	var title, state, htmlURL, author, etag, lastModified sql.NullString

	err := s.db.QueryRowContext(ctx, query,
		locator.APIBase,
		locator.Owner,
		locator.Repo,
		locator.PRNumber,
	).Scan(
		&title,
		&state,
		&htmlURL,
		&author,
		&etag,
		&lastModified,
		&entry.FetchedAtUnix,
		&entry.ExpiresAtUnix,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, mapStoreError(domain.ErrQueryFailed, err, "read cached metadata")
	}

	entry.Metadata = domain.PullRequestMetadata{
		Number:  locator.PRNumber,
		Title:   nullableString(title),
		State:   nullableString(state),
		HTMLURL: nullableString(htmlURL),
		Author:  nullableString(author),
	}
	entry.ETag = nullableString(etag)
	entry.LastModified = nullableString(lastModified)
	return &entry, nil
}

// Upsert stores or fully replaces the row for the locator.
func (s *MetadataStore) Upsert(ctx context.Context, locator github.PullRequestLocator, entry domain.CachedPullRequestMetadata) error {
	query := `
		INSERT INTO pr_metadata_cache
			(api_base, owner, repo, pr_number, title, state, html_url, author, etag, last_modified, fetched_at_unix, expires_at_unix, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(api_base, owner, repo, pr_number) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			html_url = excluded.html_url,
			author = excluded.author,
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			fetched_at_unix = excluded.fetched_at_unix,
			expires_at_unix = excluded.expires_at_unix,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		locator.APIBase,
		locator.Owner,
		locator.Repo,
		locator.PRNumber,
		nullParam(entry.Metadata.Title),
		nullParam(entry.Metadata.State),
		nullParam(entry.Metadata.HTMLURL),
		nullParam(entry.Metadata.Author),
		nullParam(entry.ETag),
		nullParam(entry.LastModified),
		entry.FetchedAtUnix,
		entry.ExpiresAtUnix,
	)
	if err != nil {
		return mapStoreError(domain.ErrWriteFailed, err, "upsert cached metadata")
	}
	return nil
}

// Touch advances only the expiry bookkeeping of an existing row. It is an
// error for the row to be missing.
func (s *MetadataStore) Touch(ctx context.Context, locator github.PullRequestLocator, fetchedAtUnix, expiresAtUnix int64) error {
	query := `
		UPDATE pr_metadata_cache
		SET fetched_at_unix = ?, expires_at_unix = ?, updated_at = strftime('%s', 'now')
		WHERE api_base = ? AND owner = ? AND repo = ? AND pr_number = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		fetchedAtUnix,
		expiresAtUnix,
		locator.APIBase,
		locator.Owner,
		locator.Repo,
		locator.PRNumber,
	)
	if err != nil {
		return mapStoreError(domain.ErrWriteFailed, err, "touch cached metadata")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrWriteFailed, err, "count touched rows")
	}
	if rows == 0 {
		return domain.NewError(domain.ErrWriteFailed,
			"no cached metadata for %s/%s#%d", locator.Owner, locator.Repo, locator.PRNumber)
	}
	return nil
}

// Close closes the database connection.
func (s *MetadataStore) Close() error {
	return s.db.Close()
}

// mapStoreError distinguishes a missing table from other store failures so
// the TUI can tell the user to run the migrate command.
func mapStoreError(kind domain.ErrorKind, err error, action string) error {
	if strings.Contains(err.Error(), "no such table") {
		return domain.WrapError(domain.ErrSchemaNotInitialised, err,
			"%s: cache schema missing, run the migrate command", action)
	}
	return domain.WrapError(kind, err, "%s", action)
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	result := value.String
	return &result
}

func nullParam(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ github.MetadataCache = (*MetadataStore)(nil)
