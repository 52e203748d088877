package formatter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

func TestWriteJSONKeepsDottedKeys(t *testing.T) {
	rows := []grid.MapRecord{
		{Key: "1", Values: map[string]any{"user.name": "ann", "id": 1.0, "meta": map[string]any{"x": true}}},
		{Key: "2", Values: map[string]any{"id": 2.0}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows, []string{"id", "user.name", "meta"}))

	out := buf.String()
	require.True(t, gjson.Valid(out), out)
	assert.Equal(t, "ann", gjson.Get(out, `0.user\.name`).String())
	assert.True(t, gjson.Get(out, "0.meta.x").Bool())
	assert.False(t, gjson.Get(out, `1.user\.name`).Exists(), "absent fields are omitted")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"id"`)), bytes.Index(buf.Bytes(), []byte(`"user.name"`)))
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCSVBlanksMissingFields(t *testing.T) {
	rows := []grid.MapRecord{
		{Key: "1", Values: map[string]any{"a": "x, y", "b": nil}},
		{Key: "2", Values: map[string]any{"b": 3.5}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, []string{"a", "b"}))
	assert.Equal(t, "a,b\n\"x, y\",\n,3.5\n", buf.String())
}

func TestOrderedFields(t *testing.T) {
	rec := grid.MapRecord{Values: map[string]any{"c": 1, "a": 2}}
	assert.Equal(t, []string{"a", "c"}, orderedFields(rec, []string{"a", "b", "c"}))
}

func TestWriteYAMLLiteralBlocks(t *testing.T) {
	rows := []Row{{Key: "1", Values: map[string]any{"name": "ann", "note": "line one\nline two"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, rows, []string{"name", "note"}, YAMLFormatOptions{LiteralBlockStrings: true}))
	assert.Equal(t, "- name: ann\n  note: |-\n    line one\n    line two\n", buf.String())
}
