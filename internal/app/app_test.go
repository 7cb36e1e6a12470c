package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carsPipeline = `
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

const missingFilePipeline = `
pipeline "Missing" {
  block "Extract" {
    oftype   = LocalFileExtractor
    filePath = "does-not-exist.csv"
  }
  block "Decode" {
    oftype = TextFileInterpreter
  }
  pipe {
    chain = [Extract, Decode]
  }
}
`

// workspace writes the sources and a CSV file into a temp dir and returns
// a configuration pointing at them.
func workspace(t *testing.T, sources ...string) *Config {
	t.Helper()
	dir := t.TempDir()
	for i, src := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("p%d.jv", i)), []byte(src), 0o600))
	}
	csv := filepath.Join(dir, "cars.csv")
	require.NoError(t, os.WriteFile(csv, []byte("name,hp\nbeetle,50\nmini,n/a\n"), 0o600))

	return &Config{
		Paths:     []string{dir},
		LogFormat: "text",
		Params: map[string]string{
			"CARS": csv,
			"DB":   filepath.Join(dir, "cars.sqlite"),
		},
	}
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	// --- Act ---
	a, _ := SetupAppTest(t, &Config{Paths: []string{"."}, LogFormat: "text"})

	// --- Assert ---
	for _, name := range []string{"HttpExtractor", "LocalFileExtractor", "TextFileInterpreter", "CSVInterpreter", "TableInterpreter", "TableTransformer", "SQLiteLoader"} {
		_, ok := a.Registry().Executor(name)
		assert.True(t, ok, name)
	}
}

func TestRun(t *testing.T) {
	// --- Arrange ---
	cfg := workspace(t, carsPipeline)
	dir := cfg.Paths[0]
	cfg.MetricsFile = filepath.Join(dir, "metrics.prom")
	cfg.TraceFile = filepath.Join(dir, "trace.json")
	a, logs := SetupAppTest(t, cfg)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, logs.String())
	assert.FileExists(t, filepath.Join(dir, "cars.sqlite"))
	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "Pipeline finished.")

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `jayvee_pipeline_runs_total{pipeline="Cars",status="completed"} 1`)
	assert.Contains(t, string(metrics), `jayvee_rows_dropped_total{block="Interpret"} 1`)

	trace, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(trace), "pipeline.run")
	assert.Contains(t, string(trace), "block.execute")
}

func TestRun_CollectsPipelineErrors(t *testing.T) {
	// --- Arrange ---
	cfg := workspace(t, carsPipeline, missingFilePipeline)
	a, logs := SetupAppTest(t, cfg)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline 'Missing'")
	assert.NotContains(t, err.Error(), "pipeline 'Cars'")
	assert.FileExists(t, filepath.Join(cfg.Paths[0], "cars.sqlite"), "the other pipeline still runs")
	assert.Contains(t, err.Error(), "failed to read local file")
	assert.NotEmpty(t, logs.String())
}

func TestRun_SelectsPipeline(t *testing.T) {
	t.Run("only the named pipeline runs", func(t *testing.T) {
		// --- Arrange ---
		cfg := workspace(t, carsPipeline, missingFilePipeline)
		cfg.Pipeline = "Cars"
		a, logs := SetupAppTest(t, cfg)

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.NoError(t, err, logs.String())
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		// --- Arrange ---
		cfg := workspace(t, carsPipeline)
		cfg.Pipeline = "Trains"
		a, _ := SetupAppTest(t, cfg)

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pipeline 'Trains' is not declared")
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid workspace without parameters", func(t *testing.T) {
		// --- Arrange ---
		cfg := workspace(t, carsPipeline)
		cfg.Params = nil
		a, logs := SetupAppTest(t, cfg)

		// --- Act ---
		err := a.Validate(context.Background())

		// --- Assert ---
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "Workspace is valid.")
	})

	t.Run("diagnostics are rendered with source", func(t *testing.T) {
		// --- Arrange ---
		cfg := workspace(t, `
pipeline "P" {
  block "A" {
    oftype = TextFileInterpreter
  }
}
`)
		a, logs := SetupAppTest(t, cfg)

		// --- Act ---
		err := a.Validate(context.Background())

		// --- Assert ---
		var diagErr *DiagnosticsError
		require.ErrorAs(t, err, &diagErr)
		assert.Equal(t, "validation", diagErr.Stage)
		assert.Contains(t, logs.String(), "Error: Unconnected input")
		assert.Contains(t, logs.String(), `block "A"`)
	})

	t.Run("json diagnostics", func(t *testing.T) {
		// --- Arrange ---
		cfg := workspace(t, `
pipeline "P" {
  block "A" {
    oftype = NoSuchBlock
  }
}
`)
		cfg.LogFormat = "json"
		a, logs := SetupAppTest(t, cfg)

		// --- Act ---
		err := a.Validate(context.Background())

		// --- Assert ---
		require.Error(t, err)
		assert.Contains(t, logs.String(), `"level":"ERROR"`)
		assert.Contains(t, logs.String(), `"location":"`)
	})
}
