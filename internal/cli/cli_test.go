package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "validate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	cases := map[string]string{
		"log-level":         "info",
		"log-format":        "text",
		"debug":             "false",
		"debug-granularity": "peek",
		"pipeline":          "",
		"metrics-file":      "",
	}
	for name, def := range cases {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
	assert.Equal(t, "e", cmd.PersistentFlags().Lookup("env").Shorthand)
}

func TestParseParams(t *testing.T) {
	t.Run("pairs", func(t *testing.T) {
		params, err := parseParams([]string{"URL=https://example.com/a=b", " RETRIES =3", "EMPTY="})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"URL":     "https://example.com/a=b",
			"RETRIES": "3",
			"EMPTY":   "",
		}, params)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseParams([]string{"URL"})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitUsage, exitErr.Code)
		assert.Contains(t, exitErr.Message, "expected KEY=VALUE")
	})
}

func TestBuildConfig(t *testing.T) {
	t.Run("valid flags", func(t *testing.T) {
		// --- Arrange ---
		opts := &RootOptions{LogLevel: "DEBUG", LogFormat: "json", DebugGranularity: "minimal", Params: []string{"A=1"}}

		// --- Act ---
		cfg, err := buildConfig(opts, []string{"cars.jv"})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, map[string]string{"A": "1"}, cfg.Params)
	})

	t.Run("invalid log level", func(t *testing.T) {
		// --- Arrange ---
		opts := &RootOptions{LogLevel: "verbose", LogFormat: "text", DebugGranularity: "peek"}

		// --- Act ---
		_, err := buildConfig(opts, []string{"cars.jv"})

		// --- Assert ---
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitUsage, exitErr.Code)
		assert.Contains(t, exitErr.Message, "LogLevel must be one of")
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	csv := filepath.Join(dir, "cars.csv")
	require.NoError(t, os.WriteFile(csv, []byte("name,hp\nbeetle,50\nmini,34\n"), 0o600))
	src := `
pipeline "Cars" {
  block "Extract" {
    oftype   = LocalFileExtractor
    filePath = requires.CARS
  }
  block "Decode" {
    oftype = TextFileInterpreter
  }
  block "Parse" {
    oftype = CSVInterpreter
  }
  block "Interpret" {
    oftype  = TableInterpreter
    columns = { name = text, hp = integer }
  }
  block "Load" {
    oftype = SQLiteLoader
    table  = "cars"
    file   = requires.DB
  }
  pipe {
    chain = [Extract, Decode, Parse, Interpret, Load]
  }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cars.jv"), []byte(src), 0o600))
	db := filepath.Join(dir, "cars.sqlite")

	// --- Act ---
	out, err := execute(t, "run", "-e", "CARS="+csv, "-e", "DB="+db, filepath.Join(dir, "cars.jv"))

	// --- Assert ---
	require.NoError(t, err, out)
	assert.FileExists(t, db)
}

func TestRunCommand_Errors(t *testing.T) {
	t.Run("no paths", func(t *testing.T) {
		_, err := execute(t, "run")
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitUsage, exitErr.Code)
	})

	t.Run("missing runtime parameter", func(t *testing.T) {
		// --- Arrange ---
		dir := t.TempDir()
		src := `
pipeline "P" {
  block "Extract" {
    oftype   = LocalFileExtractor
    filePath = requires.MISSING
  }
}
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "p.jv"), []byte(src), 0o600))

		// --- Act ---
		out, err := execute(t, "run", dir)

		// --- Assert ---
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitFailure, exitErr.Code)
		assert.Contains(t, out, "MISSING")
	})
}
