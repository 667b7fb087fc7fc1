package storage

import (
	"net/url"
	"strings"

	"github.com/tandem-app/tandem/internal/storage/postgres"
	"github.com/tandem-app/tandem/internal/storage/sqlite"
)

// NewSQLiteStore creates a SQLite-backed provider rooted at path.
func NewSQLiteStore(path string) Provider {
	return sqlite.NewStore(path)
}

// NewPostgresStore creates a PostgreSQL-backed provider for the given
// connection string.
func NewPostgresStore(connStr string) Provider {
	return postgres.New(connStr)
}

// IsPostgresConnString reports whether the config value looks like a
// PostgreSQL connection string rather than a file path.
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// HasEmbeddedCredentials reports whether a connection string carries an
// inline password.
func HasEmbeddedCredentials(connStr string) bool {
	return postgres.HasEmbeddedCredentials(connStr)
}

// RedactConnString masks any inline password in a URL-style connection
// string before it is logged or echoed.
func RedactConnString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
