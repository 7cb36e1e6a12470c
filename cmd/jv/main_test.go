package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/cli"
)

func writeWorkspace(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.jv"), []byte(src), 0o600), "failed to set up test file")
	return dir
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "validate")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"run", "--this-is-not-a-valid-flag", "."})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_SyntaxError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeWorkspace(t, `
pipeline "Broken" {
  block "A" {
`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"validate", dir})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "loading failed")
	assert.Contains(t, out.String(), "Error:")
}

func TestRun_ValidWorkspace(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeWorkspace(t, `
pipeline "Cars" {
  block "Extract" {
    oftype   = LocalFileExtractor
    filePath = "cars.csv"
  }
  block "Decode" {
    oftype = TextFileInterpreter
  }
  pipe {
    chain = [Extract, Decode]
  }
}
`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"validate", dir})

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Workspace is valid.")
}
