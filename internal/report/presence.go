// Package report shapes generic report payloads for display: it decides which
// sections carry data, numbers them, and converts their content to Markdown.
package report

import (
	"strings"

	"github.com/verustcode/reportforge/internal/jsonvalue"
)

// HasData reports whether v holds any renderable content.
//
// Null is empty. A top-level string counts when it is not blank; any other
// top-level scalar counts, including 0 and false. Objects and arrays count when
// at least one entry does (see entryHasData).
func HasData(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return false
	case jsonvalue.KindString:
		return strings.TrimSpace(v.Str()) != ""
	case jsonvalue.KindArray:
		for _, item := range v.Items() {
			if entryHasData(item) {
				return true
			}
		}
		return false
	case jsonvalue.KindObject:
		for _, m := range v.Object().Members() {
			if entryHasData(m.Value) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// entryHasData applies the rule for a single entry inside a container.
// Arrays only need to be non-empty; nested objects recurse.
func entryHasData(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return false
	case jsonvalue.KindArray:
		return v.Len() > 0
	case jsonvalue.KindString:
		return strings.TrimSpace(v.Str()) != ""
	case jsonvalue.KindObject:
		return HasData(v)
	default:
		return true
	}
}
