package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// SQLStore persists jobs, tailored resumes, referrals, and the seen-job
// ledger in SQLite or MySQL.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to the database for driver ("sqlite" or "mysql") and
// creates any missing tables.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = openSQLite(dsn)
	case "mysql":
		db, err = openMySQL(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", driver, err)
	}

	s := &SQLStore{db: db, dialect: dialects[driver], now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// foreign_keys is per connection; a single connection keeps it applied.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling sqlite foreign keys: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	normalized, err := mysqlDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("opening mysql db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	// MySQL rejects multi-statement Exec without multiStatements, so run one
	// statement at a time.
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type dialect struct {
	schema       []string
	insertIgnore string
}

var dialects = map[string]dialect{
	"sqlite": {
		insertIgnore: "INSERT OR IGNORE",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS jobs (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				external_id  TEXT,
				source       TEXT NOT NULL,
				title        TEXT NOT NULL,
				company      TEXT NOT NULL,
				location     TEXT NOT NULL,
				description  TEXT NOT NULL DEFAULT '',
				requirements TEXT NOT NULL DEFAULT '',
				salary_range TEXT NOT NULL DEFAULT '',
				url          TEXT NOT NULL DEFAULT '',
				posted_text  TEXT NOT NULL DEFAULT '',
				posted_at    DATETIME NULL,
				created_at   DATETIME NOT NULL,
				UNIQUE (source, external_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_url ON jobs (url)`,
			`CREATE TABLE IF NOT EXISTS optimized_resumes (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				job_id         INTEGER NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
				original_path  TEXT NOT NULL,
				optimized_path TEXT NOT NULL,
				notes          TEXT NOT NULL DEFAULT '',
				created_at     DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS referrals (
				id                  INTEGER PRIMARY KEY AUTOINCREMENT,
				job_id              INTEGER NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
				name                TEXT NOT NULL,
				title               TEXT NOT NULL DEFAULT '',
				company             TEXT NOT NULL DEFAULT '',
				connection_level    INTEGER NOT NULL DEFAULT 0,
				profile_url         TEXT NOT NULL DEFAULT '',
				introduction_needed BOOLEAN NOT NULL DEFAULT 1,
				notes               TEXT NOT NULL DEFAULT '',
				created_at          DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS seen_jobs (
				job_key    TEXT PRIMARY KEY,
				first_seen DATETIME NOT NULL
			)`,
		},
	},
	"mysql": {
		insertIgnore: "INSERT IGNORE",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS jobs (
				id           BIGINT AUTO_INCREMENT PRIMARY KEY,
				external_id  VARCHAR(64) NULL,
				source       VARCHAR(32) NOT NULL,
				title        VARCHAR(512) NOT NULL,
				company      VARCHAR(255) NOT NULL,
				location     VARCHAR(255) NOT NULL,
				description  TEXT NOT NULL,
				requirements TEXT NOT NULL,
				salary_range VARCHAR(255) NOT NULL DEFAULT '',
				url          VARCHAR(1024) NOT NULL DEFAULT '',
				posted_text  VARCHAR(64) NOT NULL DEFAULT '',
				posted_at    DATETIME NULL,
				created_at   DATETIME(6) NOT NULL,
				UNIQUE KEY uq_jobs_source_external (source, external_id),
				KEY idx_jobs_url (url(255))
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS optimized_resumes (
				id             BIGINT AUTO_INCREMENT PRIMARY KEY,
				job_id         BIGINT NOT NULL,
				original_path  VARCHAR(1024) NOT NULL,
				optimized_path VARCHAR(1024) NOT NULL,
				notes          TEXT NOT NULL,
				created_at     DATETIME(6) NOT NULL,
				FOREIGN KEY (job_id) REFERENCES jobs (id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS referrals (
				id                  BIGINT AUTO_INCREMENT PRIMARY KEY,
				job_id              BIGINT NOT NULL,
				name                VARCHAR(255) NOT NULL,
				title               VARCHAR(512) NOT NULL DEFAULT '',
				company             VARCHAR(255) NOT NULL DEFAULT '',
				connection_level    TINYINT NOT NULL DEFAULT 0,
				profile_url         VARCHAR(1024) NOT NULL DEFAULT '',
				introduction_needed BOOLEAN NOT NULL DEFAULT TRUE,
				notes               TEXT NOT NULL,
				created_at          DATETIME(6) NOT NULL,
				FOREIGN KEY (job_id) REFERENCES jobs (id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS seen_jobs (
				job_key    VARCHAR(255) PRIMARY KEY,
				first_seen DATETIME(6) NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
	},
}
