package database

import (
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/reportforge/pkg/logger"
)

// sqlitePragmas are applied in order on the single archive connection.
// busy_timeout covers the cleanup job deleting while the API inserts.
var sqlitePragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// SQLiteDriver stores the archive in a single SQLite file (pure Go, no cgo)
type SQLiteDriver struct{}

func (d *SQLiteDriver) Name() string {
	return "sqlite"
}

func (d *SQLiteDriver) Open(dsn string) (gorm.Dialector, error) {
	return sqlite.Open(dsn), nil
}

// PreMigrationConfig pins the pool to one connection and applies sqlitePragmas.
// A pragma that fails is logged and skipped.
func (d *SQLiteDriver) PreMigrationConfig(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if err := db.Exec("PRAGMA " + p.name + " = " + p.value).Error; err != nil {
			logger.Warn("Failed to apply SQLite pragma",
				zap.String("pragma", p.name),
				zap.Error(err),
			)
		}
	}
	return nil
}

// PostMigrationConfig refreshes the query planner statistics for the new indexes
func (d *SQLiteDriver) PostMigrationConfig(db *gorm.DB) error {
	if err := db.Exec("PRAGMA optimize").Error; err != nil {
		logger.Debug("SQLite optimize skipped", zap.Error(err))
	}
	return nil
}
