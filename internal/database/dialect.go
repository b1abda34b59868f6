package database

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// Driver identifies a supported database backend
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Dialect hides SQL differences between backends. Queries are written with
// PostgreSQL-style $n placeholders and rebound per dialect.
type Dialect interface {
	Driver() Driver

	// Rebind converts $1, $2, ... into the backend's placeholder syntax
	Rebind(query string) string

	// IsUniqueViolation reports whether err is a unique constraint failure
	IsUniqueViolation(err error) bool

	// AutoMigrate creates the schema in place. Only used by backends without file migrations.
	AutoMigrate(db *sql.DB) error
}

var pgPlaceholderRe = regexp.MustCompile(`\$\d+`)

type postgresDialect struct{}

// NewPostgresDialect returns the PostgreSQL dialect
func NewPostgresDialect() Dialect { return postgresDialect{} }

func (postgresDialect) Driver() Driver { return DriverPostgres }

func (postgresDialect) Rebind(query string) string { return query }

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (postgresDialect) AutoMigrate(*sql.DB) error {
	return errors.New("postgres schema is managed by migrations")
}

type sqliteDialect struct{}

// NewSQLiteDialect returns the SQLite dialect
func NewSQLiteDialect() Dialect { return sqliteDialect{} }

func (sqliteDialect) Driver() Driver { return DriverSQLite }

func (sqliteDialect) Rebind(query string) string {
	return pgPlaceholderRe.ReplaceAllString(query, "?")
}

func (sqliteDialect) IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (sqliteDialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(sqliteSchema)
	return err
}

// sqliteSchema mirrors migrations/000001_init.up.sql
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    sid VARCHAR(255) PRIMARY KEY,
    sess TEXT NOT NULL,
    expire DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expire ON sessions(expire);

CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(255) PRIMARY KEY,
    email VARCHAR(255) UNIQUE,
    first_name VARCHAR(255),
    last_name VARCHAR(255),
    profile_image_url TEXT,
    username VARCHAR(100) UNIQUE,
    role VARCHAR(20) NOT NULL DEFAULT 'reader',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
    id VARCHAR(36) PRIMARY KEY,
    title TEXT NOT NULL,
    subtitle TEXT,
    slug VARCHAR(255) NOT NULL UNIQUE,
    content TEXT NOT NULL,
    excerpt TEXT,
    category VARCHAR(100) NOT NULL,
    region VARCHAR(100),
    image_url TEXT,
    author_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    featured BOOLEAN NOT NULL DEFAULT 0,
    read_time INTEGER NOT NULL DEFAULT 1,
    views INTEGER NOT NULL DEFAULT 0,
    published_at DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_status_published ON articles(status, published_at);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);

CREATE TABLE IF NOT EXISTS comments (
    id VARCHAR(36) PRIMARY KEY,
    article_id VARCHAR(36) NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    parent_id VARCHAR(36) REFERENCES comments(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'approved',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_article ON comments(article_id, created_at);

CREATE TABLE IF NOT EXISTS reactions (
    id VARCHAR(36) PRIMARY KEY,
    article_id VARCHAR(36) NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type VARCHAR(20) NOT NULL,
    created_at DATETIME NOT NULL,
    UNIQUE (user_id, article_id)
);
CREATE INDEX IF NOT EXISTS idx_reactions_article ON reactions(article_id);

CREATE TABLE IF NOT EXISTS bookmarks (
    id VARCHAR(36) PRIMARY KEY,
    article_id VARCHAR(36) NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL,
    UNIQUE (user_id, article_id)
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_user ON bookmarks(user_id, created_at);
`
