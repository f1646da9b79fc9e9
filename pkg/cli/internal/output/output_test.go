package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]string{"url": "/a?b=<c>"}))
	assert.Equal(t, "{\n  \"url\": \"/a?b=<c>\"\n}\n", buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	fmt.Fprintln(tw, "NAME\tURL")
	fmt.Fprintln(tw, "local\thttp://localhost:8080")
	require.NoError(t, tw.Flush())
	assert.Equal(t, "NAME   URL\nlocal  http://localhost:8080\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "server %q not found", "x")
	assert.Equal(t, "Warning: server \"x\" not found\n", buf.String())
}
