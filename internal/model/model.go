// Package model defines the data models for the render archive.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is a custom type for storing string arrays in SQLite
type StringArray []string

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	data, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, s)
}

// StringMap is a custom type for storing string maps in SQLite
type StringMap map[string]string

// Value implements driver.Valuer interface
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(map[string]string)
		return nil
	}
	data, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, m)
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&RenderRecord{},
	}
}
