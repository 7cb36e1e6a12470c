package http_client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/testutil"
)

func extractorBlock(t *testing.T, props string, params map[string]string) (*testutil.Block, *[]time.Duration) {
	t.Helper()
	src := fmt.Sprintf(`
pipeline "P" {
  block "Download" {
    oftype = HttpExtractor
%s
  }
}
`, props)
	b := testutil.LoadBlock(t, &Module{}, src, "Download", params)

	var waits []time.Duration
	b.Executor.(*extractor).sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return b, &waits
}

func TestHttpExtractor(t *testing.T) {
	// --- Arrange ---
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		fmt.Fprint(w, "name,hp\nbeetle,50\n")
	}))
	defer srv.Close()
	b, waits := extractorBlock(t, `url = requires.URL`, map[string]string{"URL": srv.URL + "/data/cars.csv?version=2"})

	// --- Act ---
	out, err := b.Run(iotype.None)

	// --- Assert ---
	require.NoError(t, err)
	f := out.(*iotype.File)
	assert.Equal(t, "cars.csv", f.Name)
	assert.Equal(t, "csv", f.Extension)
	assert.Equal(t, "text/csv", f.MimeType)
	assert.Equal(t, "name,hp\nbeetle,50\n", string(f.Content))
	assert.Empty(t, *waits)
}

func TestHttpExtractorRetries(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		// --- Arrange ---
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "ok")
		}))
		defer srv.Close()
		b, waits := extractorBlock(t, fmt.Sprintf(`
    url                      = "%s/file.txt"
    retries                  = 3
    retryBackoffMilliseconds = 100
`, srv.URL), nil)

		// --- Act ---
		out, err := b.Run(iotype.None)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "ok", string(out.(*iotype.File).Content))
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *waits)
	})

	t.Run("linear backoff and final failure", func(t *testing.T) {
		// --- Arrange ---
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()
		b, waits := extractorBlock(t, fmt.Sprintf(`
    url                      = "%s/missing.csv"
    retries                  = 2
    retryBackoffMilliseconds = 10
    retryBackoffStrategy     = "linear"
`, srv.URL), nil)

		// --- Act ---
		_, err := b.Run(iotype.None)

		// --- Assert ---
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempt(s)")
		assert.Contains(t, err.Error(), "404")
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *waits)
	})
}

func TestRetryDelayIsCapped(t *testing.T) {
	cases := []struct {
		name     string
		settings settings
		retry    int
		want     time.Duration
	}{
		{"first exponential retry", settings{backoff: time.Second, strategy: "exponential"}, 1, time.Second},
		{"exponential growth", settings{backoff: time.Second, strategy: "exponential"}, 4, 8 * time.Second},
		{"exponential reaches the cap", settings{backoff: time.Second, strategy: "exponential"}, 40, maxRetryWait},
		{"shift past the word size", settings{backoff: time.Second, strategy: "exponential"}, 100, maxRetryWait},
		{"linear reaches the cap", settings{backoff: time.Minute, strategy: "linear"}, 1000, maxRetryWait},
		{"backoff above the cap", settings{backoff: 2 * maxRetryWait, strategy: "linear"}, 1, maxRetryWait},
		{"no backoff", settings{strategy: "exponential"}, 80, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			got := tc.settings.delay(tc.retry)

			// --- Assert ---
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHttpExtractorRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old.csv" {
			http.Redirect(w, r, "/new.csv", http.StatusMovedPermanently)
			return
		}
		fmt.Fprint(w, "moved")
	}))
	defer srv.Close()

	t.Run("followed by default", func(t *testing.T) {
		b, _ := extractorBlock(t, fmt.Sprintf(`url = "%s/old.csv"`, srv.URL), nil)

		out, err := b.Run(iotype.None)

		require.NoError(t, err)
		assert.Equal(t, "new.csv", out.(*iotype.File).Name)
	})

	t.Run("disabled", func(t *testing.T) {
		b, _ := extractorBlock(t, fmt.Sprintf(`
    url             = "%s/old.csv"
    followRedirects = false
`, srv.URL), nil)

		_, err := b.Run(iotype.None)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "301")
	})
}

func TestHttpExtractorInvalidSettings(t *testing.T) {
	b, _ := extractorBlock(t, `
    url                  = "http://localhost"
    retryBackoffStrategy = "random"
`, nil)

	_, err := b.Run(iotype.None)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retryBackoffStrategy")
}
