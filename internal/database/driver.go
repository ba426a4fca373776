package database

import "gorm.io/gorm"

// Driver opens the render archive on a specific database engine
type Driver interface {
	Name() string

	// Open returns the GORM dialector for dsn
	Open(dsn string) (gorm.Dialector, error)

	// PreMigrationConfig tunes the connection before the schema is migrated
	PreMigrationConfig(db *gorm.DB) error

	// PostMigrationConfig runs once the renders table exists
	PostMigrationConfig(db *gorm.DB) error
}
