package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"usercms/internal/config"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Store bundles the connection pool with the driver it was opened with.
// Repositories share one SQL dialect; the driver name is only consulted
// for DDL, column introspection and error translation.
type Store struct {
	DB     *sql.DB
	Driver string
}

// Open connects to the configured backend and verifies the connection.
func Open(cfg config.Config) (*Store, error) {
	switch cfg.DBDriver {
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case DriverMySQL:
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens (or creates) a local SQLite database. Exported so
// tests can run against file:<name>?mode=memory&cache=shared.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		path = "cms.db"
	}
	// Pragmas are per-connection and the pool opens more than one, so
	// they go in the DSN instead of a one-off Exec. foreign_keys keeps
	// users.role_id from ever pointing at a missing role.
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_foreign_keys=on&_busy_timeout=5000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	// journal_mode is unsupported for in-memory databases; ignore errors.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	return &Store{DB: db, Driver: DriverSQLite}, nil
}

func openMySQL(cfg config.Config) (*Store, error) {
	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db, Driver: DriverMySQL}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
