package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStringArray_ValueScan tests StringArray database conversion
func TestStringArray_ValueScan(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{"section1", "section1_1"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["section1","section1_1"]`, v)

	var s StringArray
	require.NoError(t, s.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, StringArray{}, s)

	assert.Error(t, s.Scan(42))
}

// TestStringMap_ValueScan tests StringMap database conversion
func TestStringMap_ValueScan(t *testing.T) {
	v, err := StringMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = StringMap{"section1": "1."}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"section1":"1."}`, v)

	var m StringMap
	require.NoError(t, m.Scan(`{"section1_1":"1.1"}`))
	assert.Equal(t, StringMap{"section1_1": "1.1"}, m)

	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
	assert.NotNil(t, m)

	assert.Error(t, m.Scan(3.14))
}

// TestAllModels tests the migration list
func TestAllModels(t *testing.T) {
	models := AllModels()
	require.Len(t, models, 1)
	assert.IsType(t, &RenderRecord{}, models[0])
	assert.Equal(t, "renders", RenderRecord{}.TableName())
}
