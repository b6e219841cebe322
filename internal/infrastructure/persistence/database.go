package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/opsease/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database owns the gorm handle shared by every repository.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens cfg with GORM's own logger silenced.
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger opens cfg, sizes the pool and pings once before
// returning.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            cfg.Driver != DriverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// One connection: an in-memory database exists per connection and
		// SQLite allows a single writer anyway.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(cfg.SQLitePath()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates the schema from the persistence models.
// Production PostgreSQL databases are migrated with cmd/migrate instead; this
// serves SQLite development databases and tests.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(
		&models.LedgerEntryModel{},
		&models.InvoiceModel{},
		&models.CustomerModel{},
		&models.SupplierModel{},
	); err != nil {
		return err
	}
	// Per-user uniqueness spans the embedded user_id column, which struct tags cannot express.
	for _, stmt := range userUniqueIndexes {
		if err := d.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create unique index: %w", err)
		}
	}
	return nil
}

var userUniqueIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_user_number ON invoices (user_id, invoice_number)",
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_customers_user_code ON customers (user_id, customer_code)",
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_suppliers_user_code ON suppliers (user_id, supplier_code)",
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	pool, err := d.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping is used by the health endpoint and cmd/migrate.
func (d *Database) Ping() error {
	pool, err := d.DB.DB()
	if err != nil {
		return err
	}
	return pool.Ping()
}

// Stats reports connection pool usage for the health endpoint.
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}
