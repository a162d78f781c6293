package triggerboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// minPollingInterval keeps a misconfigured board from hammering the service.
const minPollingInterval = 100 * time.Millisecond

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title           string
	source          *Source
	sourceURL       string
	columns         []Column
	pollingInterval time.Duration
	startAt         time.Time
	port            int
	headless        bool
	logger          *slog.Logger
	registry        *prometheus.Registry
	rowsCallbacks   []func([]TriggeredEvent)
	errorCallbacks  []func(error)
}

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithSource sets the trigger service endpoint to poll.
//
// Use [NewSource] to build a source with headers, timeout or filters. For a
// plain URL, [WithSourceURL] is shorter. If neither is given the board polls
// [DefaultSourceURL].
func WithSource(s Source) Option {
	return func(cfg *boardConfig) error {
		if s.url == "" {
			return errors.New("source must be created with NewSource")
		}
		cfg.source = &s
		return nil
	}
}

// WithSourceURL sets the endpoint URL to poll with default source settings.
//
// Example:
//
//	board, err := triggerboard.New(
//	    triggerboard.WithSourceURL("http://triggers.internal:8989/triggered_events/fetch_events"),
//	)
//
// Returns an error if the URL is invalid. Ignored when [WithSource] is also
// given.
func WithSourceURL(rawURL string) Option {
	return func(cfg *boardConfig) error {
		if _, err := NewSource(rawURL); err != nil {
			return err
		}
		cfg.sourceURL = rawURL
		return nil
	}
}

// WithPollingInterval sets the time between fetches.
//
// Defaults to 5 seconds if not specified.
//
// Returns an error if the duration is below 100ms.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < minPollingInterval {
			return errors.New("polling interval must be at least 100ms")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithStartAt delays the first fetch until t. A time in the past, or the
// zero time, starts polling immediately.
func WithStartAt(t time.Time) Option {
	return func(cfg *boardConfig) error {
		cfg.startAt = t
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "TriggerBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithColumns sets which record fields the grid shows and in what order.
//
// Example:
//
//	triggerboard.WithColumns(
//	    triggerboard.Column{HeaderName: "Trigger", Field: triggerboard.FieldTriggerName},
//	    triggerboard.Column{HeaderName: "Status", Field: triggerboard.FieldStatus},
//	)
//
// Returns an error if no columns are given, a field is unknown or a field
// appears twice.
func WithColumns(cols ...Column) Option {
	return func(cfg *boardConfig) error {
		valid, err := validateColumns(cols)
		if err != nil {
			return err
		}
		cfg.columns = valid
		return nil
	}
}

// WithRowsCallback registers a function to be called after every successful
// poll with the new row-set.
//
// Multiple callbacks may be registered; they execute in registration order
// after the grid has been updated. Each callback gets its own copy of the
// events.
//
// Callbacks must be non-blocking. They are invoked synchronously from a
// single goroutine. Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithRowsCallback(cb func([]TriggeredEvent)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.rowsCallbacks = append(cfg.rowsCallbacks, cb)
		return nil
	}
}

// WithErrorCallback registers a function to be called when a poll fails.
// The grid keeps its previous rows. Use errors.Is with [ErrInvalidJSON],
// [ErrMissingRecords], [ErrRecordsNotArray] or [ErrUnexpectedStatus] to
// classify the failure.
//
// The same rules as [WithRowsCallback] apply. Nil callbacks are ignored.
func WithErrorCallback(cb func(error)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.errorCallbacks = append(cfg.errorCallbacks, cb)
		return nil
	}
}

// WithRegistry registers the board's poll metrics on reg and serves reg at
// /metrics. By default each board uses its own registry with the Go runtime
// and process collectors.
//
// Returns an error if the registry is nil.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(cfg *boardConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithHeadless disables the HTTP server. The board still polls, feeds the
// grid and fires callbacks; use it to drive another front-end such as the
// terminal UI.
func WithHeadless() Option {
	return func(cfg *boardConfig) error {
		cfg.headless = true
		return nil
	}
}
