package idgen

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewID tests ID shape
func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 20)
	assert.True(t, IsValid(id))
}

// TestNewID_Unique tests uniqueness under concurrency
func TestNewID_Unique(t *testing.T) {
	const n = 1000
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewRenderID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

// TestNewID_Sortable tests that sequential IDs sort in creation order
func TestNewID_Sortable(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = NewRequestID()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

// TestIsValid tests validation of foreign strings
func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-an-id"))
	assert.False(t, IsValid("../../etc/passwd"))
}
