package triggerboard

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// sourceConfig holds mutable state during source construction.
type sourceConfig struct {
	headers      map[string]string
	timeout      time.Duration
	recordsField string
	filters      map[string]string
}

// SourceOption is a function that configures a [Source] during construction.
//
// Built-in options: [WithHeaders], [WithTimeout], [WithRecordsField],
// [WithFilter].
type SourceOption func(*sourceConfig) error

// WithHeaders adds custom HTTP headers to every fetch.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	src, err := triggerboard.NewSource(url,
//	    triggerboard.WithHeaders("X-Team", "scheduling"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout sets the HTTP request timeout for each fetch.
//
// A fetch that does not complete in time fails; the grid keeps its rows and
// the next tick tries again. Defaults to 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithRecordsField sets where the records array lives in the response body,
// using dot notation. Defaults to "records".
//
// Example:
//
//	triggerboard.WithRecordsField("data.events")
//
// Returns an error if the path is empty or has an empty segment.
func WithRecordsField(field string) SourceOption {
	return func(cfg *sourceConfig) error {
		if !validRecordsField(field) {
			return fmt.Errorf("invalid records field %q", field)
		}
		cfg.recordsField = field
		return nil
	}
}

// WithFilter adds a query filter understood by the trigger service.
//
// Valid keys are [FilterTriggerID], [FilterTriggerName], [FilterTriggerType],
// [FilterStatus] and [FilterNumRecords]. Trigger ids and record counts must
// be positive integers.
//
// Example:
//
//	triggerboard.WithFilter(triggerboard.FilterNumRecords, "50")
//
// Returns an error for an unknown key or an invalid value.
func WithFilter(key, value string) SourceOption {
	return func(cfg *sourceConfig) error {
		switch key {
		case FilterTriggerName, FilterTriggerType, FilterStatus:
			if value == "" {
				return fmt.Errorf("filter %s cannot be empty", key)
			}
		case FilterTriggerID, FilterNumRecords:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("filter %s must be a positive integer, got %q", key, value)
			}
		default:
			return fmt.Errorf("unknown filter %q", key)
		}
		cfg.filters[key] = value
		return nil
	}
}
