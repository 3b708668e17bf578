package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// MigrationsDir is the directory of the migration files inside the embedded file system.
const MigrationsDir = "migrations"

// Migrator applies the versioned schema migrations with golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// NewMySQLMigrator creates a Migrator that tracks versions in the schema_migrations table of db.
func NewMySQLMigrator(db *sql.DB, migrations fs.FS, logger *zap.Logger) (*Migrator, error) {
	driver, err := mysqlmigrate.WithInstance(db, &mysqlmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("mysqlmigrate.WithInstance() > %w", err)
	}
	return NewMigrator(migrations, "mysql", driver, logger)
}

// NewMigrator creates a Migrator reading <MigrationsDir>/<version>_<name>.{up,down}.sql from migrations.
func NewMigrator(migrations fs.FS, databaseName string, driver migratedb.Driver, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	source, err := iofs.New(migrations, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("iofs.New() > %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, databaseName, driver)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("migrate.NewWithInstance() > %w", err)
	}
	m.Log = migrateLogger{logger: logger}
	return &Migrator{migrate: m, logger: logger}, nil
}

// Up applies every pending migration and returns the schema version before and after.
// from equals to when nothing was applied.
func (m *Migrator) Up() (from uint, to uint, err error) {
	from, dirty, err := m.Version()
	if err != nil {
		return 0, 0, err
	}
	if dirty {
		return from, from, fmt.Errorf("schema is dirty at version %d", from)
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to apply", zap.Uint("version", from))
			return from, from, nil
		}
		return from, from, fmt.Errorf("migrate.Up() > %w", err)
	}

	to, dirty, err = m.Version()
	if err != nil {
		return from, 0, err
	}
	m.logger.Info("Migrations completed",
		zap.Uint("from", from),
		zap.Uint("version", to),
		zap.Bool("dirty", dirty),
	)
	return from, to, nil
}

// Version returns the current schema version, which is 0 before the first migration.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("migrate.Version() > %w", err)
	}
	return version, dirty, nil
}

// Close releases the migration source and the database driver.
// The mysql driver closes the *sql.DB it was created with.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("source.Close() > %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("driver.Close() > %w", dbErr)
	}
	return nil
}

// migrateLogger forwards golang-migrate progress to zap.
type migrateLogger struct {
	logger *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}
