// Package config loads the job configuration from defaults, an optional YAML file,
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of StartDate in files and the environment.
const DateLayout = "2006-01-02"

// Config is the fixed configuration of a run.
type Config struct {
	Token             string        `yaml:"-" envconfig:"GITHUB_TOKEN"`
	Login             string        `yaml:"login" envconfig:"STATS_LOGIN"`
	StartDate         Date          `yaml:"start_date" envconfig:"STATS_START_DATE"`
	Targets           []string      `yaml:"targets" envconfig:"STATS_TARGETS"`
	CachePath         string        `yaml:"cache_path" envconfig:"STATS_CACHE_PATH"`
	Concurrency       int           `yaml:"concurrency" envconfig:"STATS_CONCURRENCY"`
	RequestTimeout    time.Duration `yaml:"request_timeout" envconfig:"STATS_REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"STATS_REQUESTS_PER_SECOND"`

	// Refresh discards cached line counts so every repository is walked again.
	Refresh bool `yaml:"-" ignored:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Login:             "itsmeyessirski",
		StartDate:         Date{time.Date(2022, time.August, 16, 0, 0, 0, 0, time.UTC)},
		Targets:           []string{"dark_mode.svg"},
		CachePath:         "cache/loc.json",
		Concurrency:       4,
		RequestTimeout:    30 * time.Second,
		RequestsPerSecond: 5,
	}
}

// Load layers the YAML file at path (skipped when empty), the .env file in the
// working directory and the environment over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Validate checks everything but the token, whose absence is reported by the run.
func (c *Config) Validate() error {
	switch {
	case c.Login == "":
		return errors.New("login must not be empty")
	case c.StartDate.IsZero():
		return errors.New("start date must be set")
	case len(c.Targets) == 0:
		return errors.New("at least one target file is required")
	case c.CachePath == "":
		return errors.New("cache path must not be empty")
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.RequestsPerSecond <= 0:
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}

// Date is a calendar date decoded from YYYY-MM-DD.
type Date struct {
	time.Time
}

// Decode implements envconfig.Decoder.
func (d *Date) Decode(value string) error {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	d.Time = t
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	return d.Decode(node.Value)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}
