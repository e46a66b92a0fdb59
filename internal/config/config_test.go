package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Login, cfg.Login)
	assert.Equal(t, "2022-08-16", cfg.StartDate.String())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.yaml")
	content := `login: file-user
start_date: 2020-01-02
targets: [a.svg, b.svg]
cache_path: file.json
concurrency: 2
request_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("GITHUB_TOKEN", "secret")
	t.Setenv("STATS_CACHE_PATH", "env.db")
	t.Setenv("STATS_TARGETS", "x.svg,y.svg,z.svg")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "file-user", cfg.Login)
	assert.Equal(t, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC), cfg.StartDate.Time)
	assert.Equal(t, []string{"x.svg", "y.svg", "z.svg"}, cfg.Targets)
	assert.Equal(t, "env.db", cfg.CachePath)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, Default().RequestsPerSecond, cfg.RequestsPerSecond)
}

func TestLoad_InvalidDate(t *testing.T) {
	t.Setenv("STATS_START_DATE", "16/08/2022")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty login", func(c *Config) { c.Login = "" }},
		{"zero start date", func(c *Config) { c.StartDate = Date{} }},
		{"no targets", func(c *Config) { c.Targets = nil }},
		{"empty cache path", func(c *Config) { c.CachePath = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
