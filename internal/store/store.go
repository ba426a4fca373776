// Package store provides the data access layer of the render archive.
// It keeps GORM details out of the HTTP handlers and the CLI.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
type Store interface {
	Render() RenderStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db          *gorm.DB
	renderStore RenderStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:          db,
		renderStore: newRenderStore(db),
	}
}

func (s *gormStore) Render() RenderStore {
	return s.renderStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
