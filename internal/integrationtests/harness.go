// Package integrationtests runs complete workspaces through the application,
// from source files on disk to the data the pipelines produce.
package integrationtests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/app"
	"github.com/vk/jayvee/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// Dir is the temporary directory the files were written to.
	Dir string
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, configure func(cfg *app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, configure, modules...)
}

// RunIntegrationTestWithContext writes files below a temporary directory and
// runs every pipeline found there. Relative paths in the sources can be
// resolved against HarnessResult.Dir, which is also passed to configure as
// the only entry of cfg.Paths. With no modules the core modules are used.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, configure func(cfg *app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := &app.Config{
		Paths:            []string{tmpDir},
		LogLevel:         "debug",
		LogFormat:        "text",
		DebugGranularity: "peek",
	}
	if configure != nil {
		configure(cfg)
	}

	logBuffer := &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()

	result := &HarnessResult{App: testApp, Dir: tmpDir}
	if panicErr != nil {
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
	} else {
		result.Err = testApp.Run(ctx)
	}
	result.LogOutput = logBuffer.String()

	if os.Getenv("JV_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
