package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdesk/pkg/cliconfig"
	"github.com/getmockd/stubdesk/pkg/server"
)

const sampleMapping = `{
  "id": "m1",
  "name": "get users",
  "request": {"method": "GET", "urlPath": "/api/users", "queryParameters": {"page": {"equalTo": "1"}}},
  "response": {"status": 200, "jsonBody": {"users": []}},
  "metadata": {"folder": "users/list", "responseType": "json"}
}`

// isolate points config lookup at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	for _, env := range []string{
		cliconfig.EnvConfig, cliconfig.EnvStore, cliconfig.EnvDataDir, cliconfig.EnvDefaultServer,
		cliconfig.EnvDefaultServerName, cliconfig.EnvServerCreationDisabled, cliconfig.EnvLogLevel,
		cliconfig.EnvLogFormat, cliconfig.EnvLogFile,
	} {
		t.Setenv(env, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	_ = teardown()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFormAndBuild(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "m.json", sampleMapping)

	out, _, err := run(t, "", "form", path)
	require.NoError(t, err)

	var form map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &form))
	assert.Equal(t, "/api/users", form["url"])
	assert.Equal(t, "urlPath", form["urlMatchType"])
	assert.Equal(t, "users/list", form["folder"])

	built, _, err := run(t, out, "build")
	require.NoError(t, err)
	assert.JSONEq(t, sampleMapping, built)
}

func TestFormYAML(t *testing.T) {
	isolate(t)

	out, _, err := run(t, sampleMapping, "form", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "url: /api/users")

	built, _, err := run(t, out, "build", "--yaml")
	require.NoError(t, err)
	assert.JSONEq(t, sampleMapping, built)
}

func TestBuild_Validate(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, `{"method":"GET","urlMatchType":"urlPath","url":""}`, "build", "--validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field")
	assert.Contains(t, stderr, "url:")
}

func TestTree(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "m.json", `[
  {"id": "a", "name": "A", "request": {"urlPath": "/a"}, "response": {"status": 200}, "metadata": {"folder": "x"}},
  {"id": "b", "request": {"urlPath": "/b"}, "response": {"status": 200}}
]`)

	out, _, err := run(t, "", "tree", path)
	require.NoError(t, err)
	assert.Equal(t, "▸ x\n  - A\n- /b\n", out)

	out, _, err = run(t, "", "tree", "--json", "--open", "b", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"isCurrent": true`)
}

func TestTree_All(t *testing.T) {
	isolate(t)
	t.Setenv(cliconfig.EnvDefaultServer, "http://localhost:8080")
	t.Setenv(cliconfig.EnvDefaultServerName, "local")

	out, _, err := run(t, sampleMapping, "tree", "--all", "--store", "memory")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "servers\n  local\n"), out)
	assert.Contains(t, out, "    + create mapping")
	assert.Contains(t, out, "    ▸ mappings")
	assert.Contains(t, out, "- get users")
	assert.Contains(t, out, "+ create server")
}

func TestFolders(t *testing.T) {
	isolate(t)

	out, _, err := run(t, sampleMapping, "folders")
	require.NoError(t, err)
	assert.Equal(t, "users\nusers/list\n", out)
}

func TestCurl(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "m.json", `{"request":{"method":"ANY","urlPath":"/ping"},"response":{"status":200}}`)

	out, _, err := run(t, "", "curl", path)
	require.NoError(t, err)
	assert.Equal(t, "curl --location --request GET 'http://localhost:8080/ping'\n", out)
}

func TestCurl_NamedServer(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "m.json", `{"request":{"method":"GET","urlPath":"/ping"},"response":{"status":200}}`)

	_, _, err := run(t, "", "--data-dir", dir, "servers", "add", "--name", "stage", "--url", "https://stage.example.com:8443")
	require.NoError(t, err)

	out, _, err := run(t, "", "--data-dir", dir, "curl", "--server", "stage", path)
	require.NoError(t, err)
	assert.Contains(t, out, "'https://stage.example.com:8443/ping'")

	out, _, err = run(t, "", "--data-dir", dir, "curl", "--server", "missing", path)
	require.NoError(t, err)
	assert.Contains(t, out, "'"+server.DefaultBaseURL+"/ping'")
}

func TestImportCurl(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "import-curl", `curl -X POST 'http://localhost:8080/api/users?x=1' -H 'Content-Type: application/json' -d '{"a":1}'`)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	request := m["request"].(map[string]any)
	assert.Equal(t, "POST", request["method"])
	assert.Equal(t, "/api/users", request["urlPath"])
}

func TestValidate(t *testing.T) {
	isolate(t)

	out, _, err := run(t, sampleMapping, "validate")
	require.NoError(t, err)
	assert.Equal(t, "Mapping is valid\n", out)

	out, _, err = run(t, `{"request":{"method":"FETCH"},"response":{"status":200}}`, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Errors (1):")
	assert.Contains(t, out, "request.method")

	out, _, err = run(t, `{"request":{"method":"FETCH"},"response":{"status":200}}`, "validate", "--json")
	require.Error(t, err)
	assert.Contains(t, out, `"valid": false`)
}

func TestClone(t *testing.T) {
	isolate(t)

	out, _, err := run(t, `{"id":"1","uuid":"u","name":"n","custom":true}`, "clone")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"n (copy)","custom":true}`, out)

	out, _, err = run(t, `{"id":"1","name":"n"}`, "clone", "--update-id", "9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"9","name":"n"}`, out)
}

func TestBeautify(t *testing.T) {
	isolate(t)

	out, _, err := run(t, `{"a":1}`, "beautify")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}\n", out)

	out, _, err = run(t, "not json", "beautify")
	require.NoError(t, err)
	assert.Equal(t, "not json\n", out)
}

func TestServers(t *testing.T) {
	dir := isolate(t)
	t.Setenv(cliconfig.EnvDefaultServer, "http://localhost:8080")
	t.Setenv(cliconfig.EnvDefaultServerName, "local")

	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			data := filepath.Join(dir, backend)
			base := []string{"--store", backend, "--data-dir", data}
			cmd := func(args ...string) []string { return append(append([]string{}, base...), args...) }

			out, _, err := run(t, "", cmd("servers", "list")...)
			require.NoError(t, err)
			assert.Contains(t, out, "local")
			assert.Contains(t, out, "http://localhost:8080")

			_, _, err = run(t, "", cmd("servers", "add", "--name", "stage", "--url", "http://stage", "--port", "81")...)
			require.NoError(t, err)

			_, _, err = run(t, "", cmd("servers", "add", "--name", "stage", "--url", "http://other")...)
			require.Error(t, err)

			_, _, err = run(t, "", cmd("servers", "update", "stage", "--new-name", "staging")...)
			require.NoError(t, err)

			out, _, err = run(t, "", cmd("--json", "servers", "list")...)
			require.NoError(t, err)
			var servers []server.Server
			require.NoError(t, json.Unmarshal([]byte(out), &servers))
			assert.Equal(t, []server.Server{
				{Name: "local", URL: "http://localhost", Port: 8080},
				{Name: "staging", URL: "http://stage", Port: 81},
			}, servers)

			_, _, err = run(t, "", cmd("servers", "remove", "staging")...)
			require.NoError(t, err)
			_, _, err = run(t, "", cmd("servers", "remove", "staging")...)
			require.Error(t, err)
		})
	}
}

func TestServers_CreationDisabled(t *testing.T) {
	isolate(t)
	t.Setenv(cliconfig.EnvServerCreationDisabled, "true")

	_, _, err := run(t, "", "--store", "memory", "servers", "add", "--name", "x", "--url", "http://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInvalidConfig(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "", "--store", "redis", "servers", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLocalConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".stubdeskrc.yaml", "store: memory\ndefaultServer: http://mock:9000\ndefaultServerName: mock\n")

	out, _, err := run(t, "", "servers", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "mock")
	assert.Contains(t, out, "http://mock:9000")
}
