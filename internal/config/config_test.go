package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "venuescout/0.1 (+https://venuescout.example/contact)", cfg.Crawler.UserAgent)
	require.Equal(t, 5, cfg.Crawler.Concurrency)
	require.Equal(t, 2, cfg.Crawler.PerHostMax)
	require.Equal(t, time.Second, cfg.Crawler.HostMinInterval)
	require.Equal(t, 200*time.Millisecond, cfg.Crawler.JitterMin)
	require.Equal(t, 800*time.Millisecond, cfg.Crawler.JitterMax)
	require.Equal(t, 3, cfg.Crawler.MaxAttempts)
	require.True(t, cfg.Crawler.RespectRobots)
	require.Equal(t, 12, cfg.Crawler.MaxJobLinks)
	require.Equal(t, 2<<20, cfg.Crawler.MaxPageBytes)
	require.Equal(t, "Bezirk Mitte, Berlin", cfg.Discovery.Area)
	require.Contains(t, cfg.Discovery.Categories, "cafe")
	require.NotEmpty(t, cfg.Discovery.Endpoints)
	require.Equal(t, "output/venues.csv", cfg.Output.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`crawler:
  user_agent: "custom-agent/1.0"
  concurrency: 3
  host_min_interval: 2s
discovery:
  area: "Prenzlauer Berg, Berlin"
  categories:
    - bar
output:
  path: out/results.csv
logging:
  development: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "custom-agent/1.0", cfg.Crawler.UserAgent)
	require.Equal(t, 3, cfg.Crawler.Concurrency)
	require.Equal(t, 2*time.Second, cfg.Crawler.HostMinInterval)
	require.Equal(t, "Prenzlauer Berg, Berlin", cfg.Discovery.Area)
	require.Equal(t, []string{"bar"}, cfg.Discovery.Categories)
	require.Equal(t, "out/results.csv", cfg.Output.Path)
	require.False(t, cfg.Logging.Development)
	// untouched keys keep their defaults
	require.Equal(t, 2, cfg.Crawler.PerHostMax)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`crawler:
  concurrency: 0
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "crawler.concurrency")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing user agent",
			mutate:  func(c *Config) { c.Crawler.UserAgent = "" },
			wantErr: "crawler.user_agent",
		},
		{
			name:    "jitter bounds inverted",
			mutate:  func(c *Config) { c.Crawler.JitterMin = time.Second; c.Crawler.JitterMax = 0 },
			wantErr: "jitter_max",
		},
		{
			name:    "no categories without seed file",
			mutate:  func(c *Config) { c.Discovery.Categories = nil },
			wantErr: "discovery.categories",
		},
		{
			name:    "missing output path",
			mutate:  func(c *Config) { c.Output.Path = "" },
			wantErr: "output.path",
		},
		{
			name: "seed file relaxes discovery requirements",
			mutate: func(c *Config) {
				c.Discovery.SeedFile = "seed.csv"
				c.Discovery.Area = ""
				c.Discovery.Categories = nil
				c.Discovery.Endpoints = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
