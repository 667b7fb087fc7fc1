package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/lib/pq"

	"github.com/tandem-app/tandem/internal/errdefs"
	"github.com/tandem-app/tandem/internal/migration"
	"github.com/tandem-app/tandem/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	return &Store{connStr: connStr}
}

// HasEmbeddedCredentials reports whether a URL-style connection string
// carries a password. Passwords belong in the environment, .pgpass, or the
// OS keyring.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}

func (s *Store) open() error {
	if !strings.HasPrefix(s.connStr, "postgres://") && !strings.HasPrefix(s.connStr, "postgresql://") {
		return fmt.Errorf("%w: %q", ErrInvalidConnectionString, s.connStr)
	}
	if HasEmbeddedCredentials(s.connStr) {
		return ErrEmbeddedCredentials
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	return s.runMigrations()
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.connStr
}

// GetDB exposes the underlying handle for tests.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(fmt.Sprintf("postgres migrations missing from embedded fs: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.DialectPostgres)
}

func (s *Store) runMigrations() error {
	_, err := s.runner().Apply(nil)
	return err
}

// Migrate applies pending migrations, reporting progress through logFn.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	return s.runner().Apply(logFn)
}

// SchemaVersion returns the database's schema version alongside the latest
// version shipped with the binary.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	r := s.runner()
	if current, err = r.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = r.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errdefs.ErrNotFound
	}
	return err
}

// uniqueViolation maps a Postgres unique_violation (23505) onto sentinel.
func uniqueViolation(err, sentinel error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel
	}
	return err
}
