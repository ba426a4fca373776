// Package idgen generates identifiers for renders and requests.
// All IDs are xid strings: 20 characters, URL-safe and sortable by creation time.
package idgen

import "github.com/rs/xid"

// NewID generates a new globally unique, sortable identifier
func NewID() string {
	return xid.New().String()
}

// NewRenderID generates an ID for a rendered document
func NewRenderID() string {
	return NewID()
}

// NewRequestID generates an ID for request tracking
func NewRequestID() string {
	return NewID()
}

// IsValid reports whether id is a well-formed xid
func IsValid(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}
