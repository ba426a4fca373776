package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/reportforge/internal/flavor"
	"github.com/verustcode/reportforge/internal/jsonvalue"
	"github.com/verustcode/reportforge/pkg/errors"
)

func TestReadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"section1": {"summary": "x"}}`), 0644))

	raw, value, err := readPayload(path, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"section1": {"summary": "x"}}`, string(raw))
	assert.Equal(t, jsonvalue.KindObject, value.Kind())

	_, value, err = readPayload("-", strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, jsonvalue.KindArray, value.Kind())
}

func TestReadPayload_Invalid(t *testing.T) {
	_, _, err := readPayload("-", strings.NewReader("  \n"))
	assert.True(t, errors.HasCode(err, errors.ErrCodePayloadInvalid))

	_, _, err = readPayload("-", strings.NewReader("{oops"))
	assert.True(t, errors.HasCode(err, errors.ErrCodePayloadInvalid))

	_, _, err = readPayload(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestNumbersTable(t *testing.T) {
	registry, err := flavor.NewBuiltinRegistry()
	require.NoError(t, err)
	fl, err := registry.Get("bug_report")
	require.NoError(t, err)

	payload, err := jsonvalue.ParseString(`{
		"section1": {"a": 1},
		"section1_1": {"a": 1},
		"section3": {"a": 1}
	}`)
	require.NoError(t, err)

	out := numbersTable(fl, fl.Numbers(payload))
	assert.Contains(t, out, "section1_1")
	assert.Contains(t, out, "1.1")
	assert.Contains(t, out, "section3")
	assert.NotContains(t, out, "section2 ")

	// document order
	assert.Less(t, strings.Index(out, "section1_1"), strings.Index(out, "section3"))
}
