package poller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultRecordsPath is the location of the events array in the response body.
const DefaultRecordsPath = "records"

var (
	// ErrInvalidJSON is returned when the response body is not valid JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")

	// ErrMissingRecords is returned when the records field is absent.
	ErrMissingRecords = errors.New("records field missing from response")

	// ErrRecordsNotArray is returned when the records field is not a JSON array.
	ErrRecordsNotArray = errors.New("records field is not an array")

	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Record is the wire representation of one triggered event.
//
// ID, TriggerID and TriggerCount are kept as raw JSON so that numeric and
// string values pass through to the dashboard unchanged. The text fields
// accept any JSON value, see [Text].
type Record struct {
	ID           json.RawMessage `json:"id"`
	TriggerName  Text            `json:"trigger_name"`
	Status       Text            `json:"status"`
	TriggeredAt  Text            `json:"triggered_at"`
	TriggerType  Text            `json:"trigger_type"`
	TriggerID    json.RawMessage `json:"trigger_id,omitempty"`
	TriggerCount json.RawMessage `json:"trigger_count,omitempty"`
}

// Text is a record field shown as text. A JSON string is unquoted, null is
// empty and any other value keeps its compact JSON form, so an unexpected
// type never fails a poll.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(RawText(data))
	return nil
}

// RawText renders a raw JSON value the way [Text] does.
func RawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// SplitPath turns a dot-separated field path into its parts.
// An empty path yields the default records path.
func SplitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultRecordsPath
	}
	return strings.Split(path, ".")
}

// DecodeRecords parses body and returns the array found at path.
//
// Each path element must name a field of a JSON object. The value at the end
// of the path must be an array (an empty array yields an empty, non-nil slice).
func DecodeRecords(body []byte, path []string) ([]Record, error) {
	if len(path) == 0 {
		path = []string{DefaultRecordsPath}
	}

	current := json.RawMessage(bytes.TrimSpace(body))
	if !json.Valid(current) {
		return nil, ErrInvalidJSON
	}

	for i, part := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: %q is not an object", ErrMissingRecords, strings.Join(path[:i], "."))
		}
		next, ok := obj[part]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingRecords, strings.Join(path[:i+1], "."))
		}
		current = bytes.TrimSpace(next)
	}

	if len(current) == 0 || current[0] != '[' {
		return nil, ErrRecordsNotArray
	}

	records := make([]Record, 0)
	if err := json.Unmarshal(current, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
