package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
)

// extractor downloads a file over HTTP.
type extractor struct {
	client *http.Client
	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func (*extractor) InputType() iotype.IOType  { return iotype.TypeNone }
func (*extractor) OutputType() iotype.IOType { return iotype.TypeFile }

type settings struct {
	url             string
	retries         int
	backoff         time.Duration
	strategy        string
	followRedirects bool
}

func readSettings(ec *executor.Context) (*settings, error) {
	var (
		s   settings
		ms  int
		err error
	)
	if s.url, err = ec.Text("url"); err != nil {
		return nil, err
	}
	if s.retries, err = ec.Integer("retries"); err != nil {
		return nil, err
	}
	if ms, err = ec.Integer("retryBackoffMilliseconds"); err != nil {
		return nil, err
	}
	if s.strategy, err = ec.Text("retryBackoffStrategy"); err != nil {
		return nil, err
	}
	if s.followRedirects, err = ec.Bool("followRedirects"); err != nil {
		return nil, err
	}

	switch {
	case s.retries < 0:
		return nil, fmt.Errorf("retries must not be negative, got %d", s.retries)
	case ms < 0:
		return nil, fmt.Errorf("retryBackoffMilliseconds must not be negative, got %d", ms)
	case s.strategy != "exponential" && s.strategy != "linear":
		return nil, fmt.Errorf("retryBackoffStrategy must be 'exponential' or 'linear', got '%s'", s.strategy)
	}
	s.backoff = maxRetryWait
	if int64(ms) < int64(maxRetryWait/time.Millisecond) {
		s.backoff = time.Duration(ms) * time.Millisecond
	}
	return &s, nil
}

// maxRetryWait caps the wait between two attempts.
const maxRetryWait = time.Hour

// delay returns the wait before the given retry, counting from 1.
func (s *settings) delay(retry int) time.Duration {
	if s.backoff <= 0 {
		return 0
	}
	limit := int64(maxRetryWait / s.backoff)

	var factor int64
	switch {
	case s.strategy == "linear":
		factor = int64(retry)
	case retry > 62:
		factor = limit + 1
	default:
		factor = 1 << (retry - 1)
	}
	if factor > limit {
		return maxRetryWait
	}
	return s.backoff * time.Duration(factor)
}

func (x *extractor) Execute(ctx context.Context, _ iotype.Value, ec *executor.Context) (iotype.Value, error) {
	s, err := readSettings(ec)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	client := x.client
	if !s.followRedirects {
		client = withoutRedirects(client)
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			wait := s.delay(attempt)
			logger.Warn("Retrying HTTP request.", "url", s.url, "attempt", attempt, "wait", wait, "error", lastErr)
			if err := x.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		f, err := fetch(ctx, client, s.url)
		if err == nil {
			logger.Debug("Downloaded file.", "url", s.url, "name", f.Name, "bytes", len(f.Content))
			return f, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("failed to fetch %s after %d attempt(s): %w", s.url, s.retries+1, lastErr)
}

func fetch(ctx context.Context, client *http.Client, rawURL string) (*iotype.File, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The final URL names the file when redirects were followed.
	name := path.Base(resp.Request.URL.Path)
	if name == "/" || name == "." {
		name = resp.Request.URL.Hostname()
	}
	return iotype.NewFile(name, body, resp.Header.Get("Content-Type")), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
