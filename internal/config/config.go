// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/jobsearch/internal/debounce"
	"github.com/jonathan/jobsearch/internal/jobapi"
	"github.com/jonathan/jobsearch/internal/joblist"
	"github.com/jonathan/jobsearch/internal/kvstore"
	"github.com/jonathan/jobsearch/internal/notify"
	"github.com/jonathan/jobsearch/internal/query"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or come from CLI flags.
type Config struct {
	// API
	APIURL            string   `json:"api_url,omitempty" yaml:"api_url,omitempty" validate:"omitempty,url"`
	Timeout           Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
	RequestsPerSecond float64  `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gte=0"`

	// Caching and input
	StaleTime     Duration `json:"stale_time,omitempty" yaml:"stale_time,omitempty" validate:"gte=0"`
	DebounceDelay Duration `json:"debounce_delay,omitempty" yaml:"debounce_delay,omitempty" validate:"gte=0"`
	PageSize      int      `json:"page_size,omitempty" yaml:"page_size,omitempty" validate:"gte=0"`
	ToastTTL      Duration `json:"toast_ttl,omitempty" yaml:"toast_ttl,omitempty" validate:"gte=0"`

	// Bookmark storage
	Store       string `json:"store,omitempty" yaml:"store,omitempty" validate:"omitempty,oneof=file redis postgres memory"`
	StorePath   string `json:"store_path,omitempty" yaml:"store_path,omitempty"`
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" validate:"required_if=Store redis"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"required_if=Store postgres"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:            jobapi.DefaultBaseURL,
		Timeout:           Duration(jobapi.DefaultTimeout),
		RequestsPerSecond: 10,
		StaleTime:         Duration(query.DefaultStaleTime),
		DebounceDelay:     Duration(debounce.DefaultDelay),
		PageSize:          joblist.DefaultPageSize,
		ToastTTL:          Duration(notify.DefaultTTL),
		Store:             kvstore.BackendFile,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' check", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.StaleTime == 0 {
		result.StaleTime = defaults.StaleTime
	}
	if result.DebounceDelay == 0 {
		result.DebounceDelay = defaults.DebounceDelay
	}
	if result.ToastTTL == 0 {
		result.ToastTTL = defaults.ToastTTL
	}
	if result.PageSize == 0 {
		result.PageSize = defaults.PageSize
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("JOBSEARCH_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("JOBSEARCH_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("JOBSEARCH_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
}

// StoreConfig returns the kvstore settings.
func (c *Config) StoreConfig() kvstore.Config {
	return kvstore.Config{
		Backend:     c.Store,
		Path:        c.StorePath,
		RedisURL:    c.RedisURL,
		DatabaseURL: c.DatabaseURL,
	}
}

// ClientOptions returns the jobapi client settings.
func (c *Config) ClientOptions() *jobapi.Options {
	opts := jobapi.DefaultOptions()
	opts.BaseURL = c.APIURL
	opts.Timeout = time.Duration(c.Timeout)
	opts.RequestsPerSecond = c.RequestsPerSecond
	opts.Verbose = c.Verbose
	return opts
}
