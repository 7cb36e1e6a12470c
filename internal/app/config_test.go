package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		// --- Act ---
		cfg, err := NewConfig(Config{Paths: []string{"cars.jv"}})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "peek", cfg.DebugGranularity)
	})

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "no paths", cfg: Config{}, wantErr: "Paths is required"},
		{name: "empty path", cfg: Config{Paths: []string{""}}, wantErr: "Paths[0] is required"},
		{name: "log format", cfg: Config{Paths: []string{"."}, LogFormat: "xml"}, wantErr: `LogFormat must be one of [text json], got "xml"`},
		{name: "granularity", cfg: Config{Paths: []string{"."}, DebugGranularity: "all"}, wantErr: "DebugGranularity must be one of"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
