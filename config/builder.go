package config

import (
	"sort"

	"github.com/jpalmerr/triggerboard"
)

// BuildSource converts the source section into an SDK Source.
func BuildSource(sc SourceConfig) (triggerboard.Source, error) {
	var opts []triggerboard.SourceOption

	if sc.Timeout != 0 {
		opts = append(opts, triggerboard.WithTimeout(sc.Timeout.Duration()))
	}

	if len(sc.Headers) > 0 {
		opts = append(opts, triggerboard.WithHeaders(mapToKeyValuePairs(sc.Headers)...))
	}

	if sc.RecordsField != "" {
		opts = append(opts, triggerboard.WithRecordsField(sc.RecordsField))
	}

	// sorted for deterministic error reporting
	pairs := mapToKeyValuePairs(sc.Filters)
	for i := 0; i < len(pairs); i += 2 {
		opts = append(opts, triggerboard.WithFilter(pairs[i], pairs[i+1]))
	}

	return triggerboard.NewSource(sc.URL, opts...)
}

// BuildOptions converts parsed configuration into SDK options for
// [triggerboard.New]. Callers append their own options (logger, headless)
// after these.
func BuildOptions(cfg *Config) ([]triggerboard.Option, error) {
	src, err := BuildSource(cfg.Source)
	if err != nil {
		return nil, err
	}

	opts := []triggerboard.Option{
		triggerboard.WithSource(src),
		triggerboard.WithPort(cfg.Port),
		triggerboard.WithPollingInterval(cfg.PollInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, triggerboard.WithTitle(cfg.Title))
	}

	if !cfg.StartAt.IsZero() {
		opts = append(opts, triggerboard.WithStartAt(cfg.StartAt.Time))
	}

	if len(cfg.Columns) > 0 {
		cols := make([]triggerboard.Column, len(cfg.Columns))
		for i, c := range cfg.Columns {
			cols[i] = triggerboard.Column{HeaderName: c.Header, Field: c.Field}
		}
		opts = append(opts, triggerboard.WithColumns(cols...))
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
