// Package database provides database initialization and connection management.
// It uses GORM with SQLite for the embedded render archive, behind a driver
// abstraction so other relational databases can be added.
package database

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/pkg/errors"
	"github.com/verustcode/reportforge/pkg/logger"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init initializes the database at the default path
func Init() error {
	return InitWithPath(consts.DefaultDatabasePath)
}

// InitWithPath initializes the database at dbPath and runs migrations.
// Only the first call takes effect; use ResetForTesting to re-initialize.
func InitWithPath(dbPath string) error {
	var initErr error
	once.Do(func() {
		initErr = initDB(&SQLiteDriver{}, dbPath)
	})
	return initErr
}

// initDB opens dbPath with driver, migrates the archive schema and installs the
// connection as the package-level handle
func initDB(driver Driver, dbPath string) error {
	logger.Info("Initializing render archive",
		zap.String("path", dbPath),
		zap.String("driver", driver.Name()),
	)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to create database directory", err)
	}

	dialector, err := driver.Open(dbPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to open database", err)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to connect to database", err)
	}

	steps := []struct {
		name string
		code errors.ErrorCode
		run  func(*gorm.DB) error
	}{
		{"configure connection", errors.ErrCodeDBConnection, driver.PreMigrationConfig},
		{"migrate schema", errors.ErrCodeDBMigration, migrate},
		{"finalize schema", errors.ErrCodeDBConnection, driver.PostMigrationConfig},
	}
	for _, step := range steps {
		if err := step.run(conn); err != nil {
			logger.Error("Render archive setup failed", zap.String("step", step.name), zap.Error(err))
			if sqlDB, dbErr := conn.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return errors.Wrap(step.code, "failed to "+step.name, err)
		}
	}

	db = conn
	logger.Info("Render archive ready")
	return nil
}

// migrate creates or updates the tables of model.AllModels
func migrate(conn *gorm.DB) error {
	models := model.AllModels()
	if err := conn.AutoMigrate(models...); err != nil {
		return err
	}
	logger.Debug("Database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Get returns the database instance.
// Panics if the database hasn't been initialized.
func Get() *gorm.DB {
	if db == nil {
		panic("database not initialized, call Init first")
	}
	return db
}

// IsInitialized reports whether Init succeeded
func IsInitialized() bool {
	return db != nil
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	logger.Info("Closing database connection")
	return sqlDB.Close()
}

// ResetForTesting resets the database state so tests can re-initialize it.
// Only use this function in tests.
func ResetForTesting() {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db = nil
	}
	once = sync.Once{}
}

// Transaction executes a function within a database transaction
func Transaction(fn func(tx *gorm.DB) error) error {
	return Get().Transaction(fn)
}

// HealthCheck pings the database
func HealthCheck() error {
	if db == nil {
		return errors.New(errors.ErrCodeDBConnection, "database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to get database connection", err)
	}
	return sqlDB.Ping()
}
