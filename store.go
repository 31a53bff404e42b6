package sitebuilder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store wraps the relational database and provides the CRUD operations
// behind every REST route. Each method runs a single statement.
type Store struct {
	db     *sqlx.DB
	driver string
}

// OpenStore opens the database for driver, ensures the SQLite data directory
// exists, and tunes the connection pool. Call Migrate before first use.
func OpenStore(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(sqlitePath(dsn)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	return &Store{db: db, driver: driver}, nil
}

// sqlitePath strips a "file:" prefix and any query string from dsn.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

// sqliteDSN enables WAL and a busy timeout on every pooled connection, so
// writers wait instead of failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Migrate applies all pending schema migrations.
func (s *Store) Migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	// m.Close would also close the shared *sql.DB, so only the source is released.
	defer src.Close()

	var driver database.Driver
	switch s.driver {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(s.db.DB, &sqlite.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(s.db.DB, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, s.driver, driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection pool to packages that own their own tables.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// q rebinds a "?"-placeholder query for the active driver.
func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// --- users ---

// CreateUser inserts a user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO users (user_id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		u.UserID, u.Username, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", u.Username, ErrConflict)
	}
	return err
}

// GetUserByUsername returns ErrNotFound when no user has that name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT user_id, username, password_hash, created_at FROM users WHERE username = ?`), username)
	return u, notFound(err)
}

// --- templates ---

// ListTemplates returns the catalog ordered by name, optionally filtered by category.
func (s *Store) ListTemplates(ctx context.Context, category string) ([]Template, error) {
	templates := []Template{}
	var err error
	if category == "" {
		err = s.db.SelectContext(ctx, &templates, `SELECT template_id, name, category, preview_url, description FROM templates ORDER BY name`)
	} else {
		err = s.db.SelectContext(ctx, &templates, s.q(`SELECT template_id, name, category, preview_url, description FROM templates WHERE category = ? ORDER BY name`), category)
	}
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// UpsertTemplate inserts or replaces a catalog entry.
func (s *Store) UpsertTemplate(ctx context.Context, t Template) error {
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO templates (template_id, name, category, preview_url, description) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (template_id) DO UPDATE SET
    name = excluded.name,
    category = excluded.category,
    preview_url = excluded.preview_url,
    description = excluded.description`),
		t.TemplateID, t.Name, t.Category, t.PreviewURL, t.Description)
	return err
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
