// Package sqlstore implements the library repositories on a relational
// database: SQLite through mattn/go-sqlite3 by default, or PostgreSQL
// through lib/pq. Statements are built with goqu as prepared statements,
// so every caller-supplied value travels as a bound parameter.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"library-console/library"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// RequiredTables must all exist before a session may start.
var RequiredTables = []string{"administrators", "members", "books", "loans"}

//go:embed schema/*.sql
var schemaFS embed.FS

// Store provides the library repositories over one database connection pool.
type Store struct {
	db      *sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
	log     zerolog.Logger

	// lockRows adds FOR UPDATE to reads made inside a unit of work. SQLite
	// has no row locks; there the whole unit of work holds the write lock.
	lockRows    bool
	checkSchema bool
}

var _ library.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger receives every executed statement at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithoutSchemaCheck opens a database whose tables may not exist yet.
func WithoutSchemaCheck() Option {
	return func(s *Store) { s.checkSchema = false }
}

// Open connects to the database and verifies it is reachable and holds all
// RequiredTables. Failures wrap library.ErrConnection or library.ErrSchemaMissing.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	s := &Store{driver: driver, log: zerolog.Nop(), checkSchema: true}
	for _, opt := range opts {
		opt(s)
	}

	switch driver {
	case DriverSQLite:
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
		s.lockRows = true
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", library.ErrConnection, driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", library.ErrConnection, err)
	}

	if driver == DriverSQLite {
		// WAL lets listings read while a unit of work holds the write lock.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	s.db = db
	s.dialect = goqu.Dialect(driver)

	if s.checkSchema {
		if err := s.VerifySchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// sqliteDSN turns a file path into a DSN with a busy timeout, foreign keys,
// and BEGIN IMMEDIATE transactions. The parent directory is created so a
// first run succeeds.
func sqliteDSN(path string) (string, error) {
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create db dir: %w", err)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate", path), nil
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Driver reports which database the store talks to.
func (s *Store) Driver() string { return s.driver }

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// VerifySchema fails with library.ErrSchemaMissing naming every absent table.
func (s *Store) VerifySchema(ctx context.Context) error {
	var ds *goqu.SelectDataset
	switch s.driver {
	case DriverPostgres:
		ds = s.from(goqu.S("information_schema").Table("tables")).
			Select("table_name").
			Where(goqu.C("table_schema").Eq(goqu.L("current_schema()")))
	default:
		ds = s.from("sqlite_master").
			Select("name").
			Where(goqu.C("type").Eq("table"))
	}

	var names []string
	if err := s.selectAll(ctx, s.db, &names, ds); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}

	var missing []string
	for _, t := range RequiredTables {
		if !existing[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing tables %s", library.ErrSchemaMissing, strings.Join(missing, ", "))
	}
	return nil
}

// InitSchema creates any missing tables. It never alters existing ones.
func (s *Store) InitSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + s.driver + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	start := time.Now()
	_, err = s.db.ExecContext(ctx, string(ddl))
	s.logQuery("init schema", start, err)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Statement helpers
// ---------------------------------------------------------------------------

type builder interface {
	ToSQL() (string, []interface{}, error)
}

func (s *Store) from(table any) *goqu.SelectDataset {
	return s.dialect.From(table).Prepared(true)
}

func (s *Store) insert(table string) *goqu.InsertDataset {
	return s.dialect.Insert(table).Prepared(true)
}

func (s *Store) update(table string) *goqu.UpdateDataset {
	return s.dialect.Update(table).Prepared(true)
}

func (s *Store) logQuery(query string, start time.Time, err error) {
	ev := s.log.Debug()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("query", query).Dur("duration", time.Since(start)).Msg("executed sql")
}

func (s *Store) exec(ctx context.Context, e sqlx.ExecerContext, b builder) (sql.Result, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sql: %w", err)
	}
	start := time.Now()
	res, err := e.ExecContext(ctx, query, args...)
	s.logQuery(query, start, err)
	return res, err
}

// get scans exactly one row into dest; sql.ErrNoRows passes through.
func (s *Store) get(ctx context.Context, q sqlx.QueryerContext, dest any, b builder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build sql: %w", err)
	}
	start := time.Now()
	err = sqlx.GetContext(ctx, q, dest, query, args...)
	s.logQuery(query, start, ignoreNoRows(err))
	return err
}

func (s *Store) selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b builder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build sql: %w", err)
	}
	start := time.Now()
	err = sqlx.SelectContext(ctx, q, dest, query, args...)
	s.logQuery(query, start, err)
	return err
}

// insertReturningID runs an insert and yields the new surrogate key.
// PostgreSQL reports it through RETURNING; SQLite through LastInsertId.
func (s *Store) insertReturningID(ctx context.Context, q sqlx.ExtContext, ds *goqu.InsertDataset) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		if err := s.get(ctx, q, &id, ds.Returning("id")); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.exec(ctx, q, ds)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
