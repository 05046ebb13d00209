package iocache

import (
	"errors"
	"fmt"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// IntegrityError reports a row that would break a uniqueness constraint of the cache.
type IntegrityError struct {
	Tag  string
	Repo string
	Hash string
	Err  error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s/%s already has %s", contract.ErrCacheIntegrity, e.Tag, e.Repo, e.Hash)
}

// Is makes errors.Is(err, contract.ErrCacheIntegrity) match.
func (e *IntegrityError) Is(target error) bool { return target == contract.ErrCacheIntegrity }

func (e *IntegrityError) Unwrap() error { return e.Err }

// isUniqueViolation reports whether err is a unique or primary key violation of any backend driver.
func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}
