// Package http_client provides the HttpExtractor blocktype, which downloads
// a file over HTTP with optional retries.
package http_client

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/registry"
)

//go:embed manifest.jv
var manifest []byte

// Module implements the registry.Module interface. Client may be set to
// override the default client, e.g. in tests.
type Module struct {
	Client *http.Client
}

// Register registers the HttpExtractor executor and its manifest.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = newClient(5 * time.Minute)
	}
	r.RegisterManifest("http_client.jv", manifest)
	r.RegisterBlockExecutor("HttpExtractor", func() executor.BlockExecutor {
		return &extractor{client: client, sleep: sleepContext}
	})
}
