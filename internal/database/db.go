package database

import (
	"fmt"
	"time"

	"billing/internal/config"
	"billing/internal/logger"
	"billing/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens the configured store, migrates the schema and seeds defaults
func NewConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Open connects to sqlite or postgres depending on DB_DRIVER
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return db, nil
	default:
		return OpenSQLite(cfg.DBPath)
	}
}

// OpenSQLite opens a single-file store at path (":memory:" for a throwaway one).
// The pool is limited to one connection so every transaction is serialized.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// Migrate creates or updates the ledger tables and inserts default rows
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.Customer{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Setting{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return Seed(db)
}

// Seed inserts the default settings and categories. Existing rows are never overwritten.
func Seed(db *gorm.DB) error {
	settings := make([]model.Setting, len(model.DefaultSettings))
	copy(settings, model.DefaultSettings)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	categories := make([]model.Category, 0, len(model.DefaultCategories))
	for _, name := range model.DefaultCategories {
		categories = append(categories, model.Category{Name: name})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(gormWriter{log: logger.WithComponent("gorm")}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// gormWriter routes gorm's own log lines into zerolog
type gormWriter struct {
	log *zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}
