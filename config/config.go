// Package config provides YAML configuration parsing for TriggerBoard.
//
// This package enables running TriggerBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Scheduler Events
//	port: 8080
//	poll_interval: 5s
//
//	source:
//	  url: ${TRIGGER_SERVICE_URL:-http://localhost:8989/triggered_events/fetch_events}
//	  timeout: 3s
//	  headers:
//	    X-Team: scheduling
//	  filters:
//	    status: active
//	    num_records: "50"
//
//	columns:
//	  - header: Trigger
//	    field: trigger_name
//	  - header: Status
//	    field: status
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/triggerboard"
)

const (
	// DefaultSourceURL is polled when the file names no source.
	DefaultSourceURL = triggerboard.DefaultSourceURL

	// minPollInterval is the minimum allowed polling interval for file configs.
	// This prevents accidental DoS of the trigger service.
	minPollInterval = 1 * time.Second

	defaultPort         = 8080
	defaultPollInterval = 5 * time.Second
)

// Config is the root configuration structure for TriggerBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "TriggerBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the time between fetches.
	// Accepts duration strings like "5s", "1m". Defaults to 5s.
	PollInterval Duration `yaml:"poll_interval"`

	// StartAt delays the first fetch until an RFC 3339 timestamp.
	StartAt Timestamp `yaml:"start_at"`

	// Source is the trigger service endpoint.
	Source SourceConfig `yaml:"source"`

	// Columns selects and orders the grid columns. Empty means the defaults.
	Columns []ColumnConfig `yaml:"columns"`
}

// SourceConfig defines the events endpoint to poll.
type SourceConfig struct {
	// URL is the fetch_events endpoint URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// RecordsField is the dot path of the records array. Defaults to "records".
	RecordsField string `yaml:"records_field"`

	// Filters are query parameters understood by the trigger service:
	// trigger_id, trigger_name, trigger_type, status, num_records.
	// Values support environment variable substitution.
	Filters map[string]string `yaml:"filters"`
}

// ColumnConfig defines one grid column.
type ColumnConfig struct {
	// Header is the column title. Defaults to the field name.
	Header string `yaml:"header"`

	// Field is the record key shown in the column.
	Field string `yaml:"field"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Timestamp wraps time.Time for YAML unmarshalling of RFC 3339 strings.
type Timestamp struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q (expected RFC 3339): %w", s, err)
	}

	t.Time = parsed
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the source URL and header values.
// Defaults are applied for Port (8080), PollInterval (5s) and the source URL.
// An empty document is a valid configuration that polls the default source.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	}
	if cfg.Source.URL == "" {
		cfg.Source.URL = DefaultSourceURL
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	// the empty document always parses
	cfg, _ := Parse(nil)
	return cfg
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if err := c.Source.expandAndValidate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Field == "" {
			return fmt.Errorf("columns[%d]: field is required", i)
		}
		if !triggerboard.KnownField(col.Field) {
			return fmt.Errorf("columns[%d]: unknown field %q", i, col.Field)
		}
		if seen[col.Field] {
			return fmt.Errorf("columns[%d]: duplicate field %q", i, col.Field)
		}
		seen[col.Field] = true
	}

	return nil
}

func (s *SourceConfig) expandAndValidate() error {
	expanded, err := expandEnvVars(s.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	s.URL = expanded

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range s.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		s.Headers[k] = expanded
	}

	if s.Timeout != 0 {
		if s.Timeout.Duration() < 0 {
			return fmt.Errorf("timeout cannot be negative, got %s", s.Timeout.Duration())
		}
		if s.Timeout.Duration() < 100*time.Millisecond {
			return fmt.Errorf("timeout must be at least 100ms if specified, got %s", s.Timeout.Duration())
		}
	}

	if s.RecordsField != "" {
		for _, part := range strings.Split(s.RecordsField, ".") {
			if part == "" {
				return fmt.Errorf("invalid records_field %q", s.RecordsField)
			}
		}
	}

	for k, v := range s.Filters {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("filters[%s]: %w", k, err)
		}
		s.Filters[k] = expanded
		v = expanded

		switch k {
		case triggerboard.FilterTriggerName, triggerboard.FilterTriggerType, triggerboard.FilterStatus:
			if v == "" {
				return fmt.Errorf("filters[%s]: value cannot be empty", k)
			}
		case triggerboard.FilterTriggerID, triggerboard.FilterNumRecords:
			if n, err := strconv.Atoi(v); err != nil || n <= 0 {
				return fmt.Errorf("filters[%s]: must be a positive integer, got %q", k, v)
			}
		default:
			return fmt.Errorf("unknown filter %q", k)
		}
	}

	return nil
}
