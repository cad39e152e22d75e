package commands_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/cmd/covscope/commands"
	"github.com/covscope/covscope/pkg/diffscope"
)

const beforeMain = `package main

func hello() int {
	return 1
}

func bye() int {
	return 2
}
`

const afterMain = `package main

func hello() int {
	return 3
}

func bye() int {
	return 2
}
`

// executeIn is execute with a stdin stream attached to the root command.
func executeIn(t *testing.T, cmd *cobra.Command, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	root := &cobra.Command{Use: "covscope", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "", "config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolP("quiet", "q", false, "suppress output")
	root.AddCommand(cmd)

	var out, errOut bytes.Buffer

	root.SetIn(stdin)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), errOut.String(), err
}

func writeDirTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func TestPayloadGen_FromDirs(t *testing.T) {
	t.Parallel()

	before := writeDirTree(t, map[string]string{"main.go": beforeMain})
	after := writeDirTree(t, map[string]string{"main.go": afterMain})
	outPath := filepath.Join(t.TempDir(), "payload.json")

	_, errOut, err := execute(t, commands.NewPayloadCommand(),
		"payload", "gen", "--before", before, "--after", after, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "generated payload: 1 units")

	raw, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)

	payload, parseErr := diffscope.ParsePayload(raw)
	require.NoError(t, parseErr)

	require.Len(t, payload, 1)
	assert.Equal(t, "main", payload[0].UnitPath)
	require.Len(t, payload[0].MethodChanges, 1)
	assert.Equal(t, "hello", payload[0].MethodChanges[0].MethodName)
	assert.Equal(t, "modified", payload[0].MethodChanges[0].Kind)
}

func TestPayloadGen_WritesToStdout(t *testing.T) {
	t.Parallel()

	before := writeDirTree(t, map[string]string{"main.go": beforeMain})
	after := writeDirTree(t, map[string]string{"main.go": afterMain})

	out, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "gen", "--before", before, "--after", after)
	require.NoError(t, err)

	payload, parseErr := diffscope.ParsePayload([]byte(out))
	require.NoError(t, parseErr)
	require.Len(t, payload, 1)
}

func TestPayloadGen_LanguageFilterExcludes(t *testing.T) {
	t.Parallel()

	before := writeDirTree(t, map[string]string{"main.go": beforeMain})
	after := writeDirTree(t, map[string]string{"main.go": afterMain})

	out, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "gen", "--before", before, "--after", after, "--lang", "Java")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestPayloadGen_RequiresSource(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, commands.NewPayloadCommand(), "payload", "gen")
	require.ErrorIs(t, err, commands.ErrPayloadSourceMissing)
}

func TestPayloadGen_RejectsAmbiguousSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "gen", "--repo", dir, "--before", dir, "--after", dir)
	require.ErrorIs(t, err, commands.ErrPayloadSourceAmbiguous)
}

func TestPayloadValidate_ValidPayload(t *testing.T) {
	t.Parallel()

	payload := writeTempFile(t, "payload.json",
		`[{"unitPath":"com/example/Main","methodChanges":[{"methodName":"run","kind":"modified","lines":[{"start":3,"end":5}]}]}]`)

	out, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "validate", payload, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "payload is valid")
	assert.Contains(t, out, "1 entries, 1 units indexed")
}

func TestPayloadValidate_SchemaViolation(t *testing.T) {
	t.Parallel()

	payload := writeTempFile(t, "payload.json", `[{"methodChanges":[]}]`)

	out, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "validate", payload, "--no-color")
	require.ErrorIs(t, err, commands.ErrPayloadInvalid)
	assert.Contains(t, out, "payload validation failed")
	assert.Contains(t, out, "unitPath")
}

func TestPayloadValidate_MalformedJSON(t *testing.T) {
	t.Parallel()

	payload := writeTempFile(t, "payload.json", `{definitely not json`)

	_, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "validate", payload, "--no-color")
	require.ErrorIs(t, err, commands.ErrPayloadInvalid)
}

func TestPayloadValidate_Stdin(t *testing.T) {
	t.Parallel()

	stdin := strings.NewReader(`[{"unitPath":"Main","methodChanges":[{"methodName":"run"}]}]`)

	out, _, err := executeIn(t, commands.NewPayloadCommand(), stdin,
		"payload", "validate", "-", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "payload is valid (stdin)")
}

func TestPayloadValidate_MissingSchemaFile(t *testing.T) {
	t.Parallel()

	payload := writeTempFile(t, "payload.json", `[]`)
	missing := filepath.Join(t.TempDir(), "schema.json")

	_, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "validate", payload, "--schema", missing, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema file")
}

func TestPayloadValidate_MissingPayloadFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "payload.json")

	_, _, err := execute(t, commands.NewPayloadCommand(),
		"payload", "validate", missing, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read payload")
}
