package grid

import (
	"encoding/json"
	"time"
)

// Field names understood by the grid, in wire order.
const (
	FieldID           = "id"
	FieldTriggerName  = "trigger_name"
	FieldStatus       = "status"
	FieldTriggeredAt  = "triggered_at"
	FieldTriggerType  = "trigger_type"
	FieldTriggerID    = "trigger_id"
	FieldTriggerCount = "trigger_count"
)

// Column describes one grid column.
type Column struct {
	// HeaderName is the label shown above the column.
	HeaderName string `json:"headerName"`

	// Field is the record key rendered in the column.
	Field string `json:"field"`
}

// DefaultColumns returns the standard column set for triggered events.
func DefaultColumns() []Column {
	return []Column{
		{HeaderName: "ID", Field: FieldID},
		{HeaderName: "Trigger Name", Field: FieldTriggerName},
		{HeaderName: "Status", Field: FieldStatus},
		{HeaderName: "Triggered At", Field: FieldTriggeredAt},
		{HeaderName: "Trigger Type", Field: FieldTriggerType},
	}
}

// KnownField reports whether name is a field a column may render.
func KnownField(name string) bool {
	switch name {
	case FieldID, FieldTriggerName, FieldStatus, FieldTriggeredAt,
		FieldTriggerType, FieldTriggerID, FieldTriggerCount:
		return true
	}
	return false
}

// Row is the storage representation of a triggered event, serialized with
// the same keys the trigger service uses.
type Row struct {
	ID           json.RawMessage `json:"id"`
	TriggerName  string          `json:"trigger_name"`
	Status       string          `json:"status"`
	TriggeredAt  string          `json:"triggered_at"`
	TriggerType  string          `json:"trigger_type"`
	TriggerID    json.RawMessage `json:"trigger_id,omitempty"`
	TriggerCount json.RawMessage `json:"trigger_count,omitempty"`
}

// Snapshot is the grid state at one point in time.
type Snapshot struct {
	Columns []Column `json:"columns"`
	Records []Row    `json:"records"`

	// Version increments on every SetRows. Zero means no rows were ever set.
	Version uint64 `json:"version"`

	// UpdatedAt is the time of the last SetRows.
	UpdatedAt time.Time `json:"updated_at"`
}

// Grid defines the rendering surface consumed by the poller.
//
// Implementations must be safe for concurrent access.
type Grid interface {
	// Columns returns the column definitions the grid was created with.
	Columns() []Column

	// SetRows replaces the complete row-set and notifies subscribers.
	SetRows(rows []Row)

	// Snapshot returns a copy of the current state.
	Snapshot() Snapshot

	// Subscribe returns a channel that receives a snapshot after every SetRows.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
