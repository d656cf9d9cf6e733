// Package database opens the PostgreSQL connection used by the repositories
// and applies the schema migrations embedded in this package.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects gorm to PostgreSQL. Unique and foreign key violations are
// translated to gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Open(dsn string, opts Options, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// NewGormLogger routes gorm's slow-query and error output through logrus.
func NewGormLogger(log *logrus.Logger) gormlogger.Interface {
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate applies every pending up migration. It uses its own lib/pq
// connection so that the migration lock never competes with the pool.
func Migrate(dsn string, log *logrus.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	return migrateWith(sqlDB, log)
}

func migrateWith(sqlDB *sql.DB, log *logrus.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := pgmigrate.WithInstance(sqlDB, &pgmigrate.Config{})
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database schema is up to date")
	return nil
}

// Health reports whether the database answers.
type Health struct {
	db *gorm.DB
}

func NewHealth(db *gorm.DB) *Health {
	return &Health{db: db}
}

func (h *Health) Ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
