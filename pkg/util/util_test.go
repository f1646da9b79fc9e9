package util

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", TruncateBody("short", 10))
	assert.Equal(t, "abc...(truncated)", TruncateBody("abcdef", 3))
	long := strings.Repeat("x", MaxLogBodySize+1)
	assert.Equal(t, strings.Repeat("x", MaxLogBodySize)+"...(truncated)", TruncateBody(long, 0))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	v, err := ParseJSON(`{"a": 12345678901234567890}`)
	require.NoError(t, err)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567890"), obj["a"])

	_, err = ParseJSON(`{"a": 1} {"b": 2}`)
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = ParseJSON(`{"a": `)
	assert.Error(t, err)
}

func TestPrettyJSON(t *testing.T) {
	t.Parallel()

	out, err := PrettyJSON(map[string]any{"a": 1, "b": "<x>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1,\n    \"b\": \"<x>\"\n}", out)

	compact, err := CompactJSON(map[string]any{"a": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, compact)
}

func TestBeautifyJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"object", `{"a":1}`, "{\n    \"a\": 1\n}"},
		{"array", `[1,2]`, "[\n    1,\n    2\n]"},
		{"invalid kept", `{"a":`, `{"a":`},
		{"blank kept", "   ", "   "},
		{"empty kept", "", ""},
		{"scalar", `"x"`, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BeautifyJSON(tt.input))
		})
	}
}

func TestBeautifyXML(t *testing.T) {
	t.Parallel()

	out := BeautifyXML(`<a><b>1</b></a>`)
	assert.Equal(t, "<a>\n    <b>1</b>\n</a>", out)

	assert.Equal(t, "not xml <", BeautifyXML("not xml <"))
	assert.Equal(t, "", BeautifyXML(""))
}

func TestBeautify_PicksFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "{\n    \"a\": 1\n}", Beautify(`{"a":1}`))
	assert.Equal(t, "<a>\n    <b/>\n</a>", Beautify(`<a><b/></a>`))
}
