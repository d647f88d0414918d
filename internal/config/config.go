// Package config loads the phrasecli configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BigQueryConfig names a table of words. When Table is set the word list is
// read from BigQuery instead of WordsPath.
type BigQueryConfig struct {
	Project  string `yaml:"project" validate:"required_with=Table"`
	Table    string `yaml:"table"`
	Scope    string `yaml:"scope"`
	Location string `yaml:"location"`
}

type Config struct {
	WordsPath   string         `yaml:"words_path"`
	PhrasesPath string         `yaml:"phrases_path"`
	BigQuery    BigQueryConfig `yaml:"bigquery"`
	// MetricsPath, when set, receives the batch metrics in the Prometheus
	// text format.
	MetricsPath string `yaml:"metrics_path"`

	// Parallelism is the number of phrases solved at once.
	Parallelism int           `yaml:"parallelism" validate:"gte=1,lte=64"`
	Timeout     time.Duration `yaml:"timeout"`
	Verbose     bool          `yaml:"verbose"`
	Confirm     bool          `yaml:"confirm"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Parallelism: 4,
		Timeout:     time.Minute,
		BigQuery: BigQueryConfig{
			Location: "US",
		},
	}
}

var validate = validator.New()

var errNoWordSource = errors.New("either words_path or bigquery.table must be set")

// Load reads the configuration at path over the defaults, then applies the
// environment overrides. A missing file is not an error. The result is not
// validated, since command line flags may still complete it.
func Load(path string) (Config, error) {
	config := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return config, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return config, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(&config); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("PHRASEFINDER_WORDS"); v != "" {
		config.WordsPath = v
	}
	if v := os.Getenv("PHRASEFINDER_PHRASES"); v != "" {
		config.PhrasesPath = v
	}
	if v := os.Getenv("PHRASEFINDER_METRICS"); v != "" {
		config.MetricsPath = v
	}
	if v := os.Getenv("PHRASEFINDER_PARALLELISM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PHRASEFINDER_PARALLELISM: %w", err)
		}
		config.Parallelism = n
	}
	return nil
}

// Validate checks field ranges and that a word source is configured.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.WordsPath == "" && c.BigQuery.Table == "" {
		return fmt.Errorf("invalid config: %w", errNoWordSource)
	}
	return nil
}
