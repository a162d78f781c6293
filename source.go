package triggerboard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/triggerboard/internal/poller"
)

const (
	// DefaultSourceURL is the trigger service's events endpoint.
	DefaultSourceURL = "http://localhost:8989/triggered_events/fetch_events"

	// CreateTriggerPath is the trigger service endpoint that accepts new
	// triggers, relative to the service root.
	CreateTriggerPath = "/triggers/create_trigger"

	// fetchEventsPath is stripped from the source URL to find the service root.
	fetchEventsPath = "/triggered_events/fetch_events"

	defaultSourceTimeout = 10 * time.Second
)

// Query filters understood by the trigger service's fetch endpoint.
const (
	FilterTriggerID   = "trigger_id"
	FilterTriggerName = "trigger_name"
	FilterTriggerType = "trigger_type"
	FilterStatus      = "status"
	FilterNumRecords  = "num_records"
)

// Source describes the trigger service endpoint a board polls.
//
// Source is immutable after creation via [NewSource]. Getters return copies
// of mutable data.
type Source struct {
	url          string
	headers      map[string]string
	timeout      time.Duration
	recordsField string
	filters      map[string]string
}

// URL returns the endpoint URL without filters applied.
func (s Source) URL() string {
	return s.url
}

// Headers returns a copy of the custom HTTP headers sent with every fetch.
func (s Source) Headers() map[string]string {
	return copyMap(s.headers)
}

// Timeout returns the per-fetch timeout.
// Defaults to 10 seconds if not explicitly set via [WithTimeout].
func (s Source) Timeout() time.Duration {
	return s.timeout
}

// RecordsField returns the dot-separated path of the records array.
func (s Source) RecordsField() string {
	return s.recordsField
}

// Filters returns a copy of the query filters.
func (s Source) Filters() map[string]string {
	return copyMap(s.filters)
}

// RequestURL returns the URL that is actually fetched: the endpoint URL with
// filters merged into its query string. Filters override existing query
// parameters of the same name.
func (s Source) RequestURL() string {
	if len(s.filters) == 0 {
		return s.url
	}
	u, err := url.Parse(s.url)
	if err != nil {
		// validated in NewSource
		return s.url
	}
	q := u.Query()
	for k, v := range s.filters {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// CreateTriggerURL returns the create-trigger endpoint of the service that
// serves the events endpoint. A path prefix in front of
// /triggered_events/fetch_events is kept; any other path is replaced.
func (s Source) CreateTriggerURL() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return ""
	}
	root := ""
	if prefix, ok := strings.CutSuffix(strings.TrimSuffix(u.Path, "/"), fetchEventsPath); ok {
		root = prefix
	}
	return (&url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: root + CreateTriggerPath}).String()
}

// NewSource creates a [Source] for the given endpoint URL and options.
//
// The rawURL parameter must be a valid URL with an http or https scheme.
// An empty rawURL selects [DefaultSourceURL].
//
// Example:
//
//	src, err := triggerboard.NewSource("http://triggers.internal/triggered_events/fetch_events",
//	    triggerboard.WithFilter(triggerboard.FilterStatus, "active"),
//	    triggerboard.WithTimeout(3 * time.Second),
//	)
func NewSource(rawURL string, opts ...SourceOption) (Source, error) {
	if rawURL == "" {
		rawURL = DefaultSourceURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Source{}, errors.New("URL must have a scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return Source{}, errors.New("URL must have a host")
	}

	cfg := &sourceConfig{
		headers:      make(map[string]string),
		timeout:      defaultSourceTimeout,
		recordsField: poller.DefaultRecordsPath,
		filters:      make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Source{}, err
		}
	}

	return Source{
		url:          rawURL,
		headers:      cfg.headers,
		timeout:      cfg.timeout,
		recordsField: cfg.recordsField,
		filters:      cfg.filters,
	}, nil
}

// taskConfig converts the source to the poller's configuration.
func (s Source) taskConfig(period time.Duration, startAt time.Time) poller.TaskConfig {
	return poller.TaskConfig{
		URL:         s.RequestURL(),
		Headers:     copyMap(s.headers),
		Timeout:     s.timeout,
		RecordsPath: poller.SplitPath(s.recordsField),
		Period:      period,
		StartAt:     startAt,
	}
}

// validRecordsField reports whether every segment of a dot path is non-empty.
func validRecordsField(field string) bool {
	if field == "" {
		return false
	}
	for _, part := range strings.Split(field, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
