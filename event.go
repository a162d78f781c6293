package triggerboard

import (
	"github.com/jpalmerr/triggerboard/internal/grid"
	"github.com/jpalmerr/triggerboard/internal/poller"
	"github.com/jpalmerr/triggerboard/internal/popup"
)

// Status values the trigger service is known to emit. The set is owned by
// the service and is not closed; any string is passed through unchanged.
const (
	StatusPending  = "pending"
	StatusSuccess  = "success"
	StatusFailure  = "failure"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Trigger types a trigger can be configured with.
const (
	TriggerTypeScheduled = popup.TriggerTypeScheduled
	TriggerTypeAPI       = popup.TriggerTypeAPI
)

// TriggeredEvent describes one execution of a trigger, as reported by the
// trigger service.
//
// Events are created and destroyed by the service. TriggerBoard only holds
// the latest snapshot for rendering and never modifies it.
type TriggeredEvent struct {
	// ID is the event identifier. Numeric identifiers are rendered in their
	// original JSON form, string identifiers without quotes.
	ID string

	// TriggerName is the name of the trigger that fired.
	TriggerName string

	// Status is the event status as reported by the service.
	Status string

	// TriggeredAt is the service-formatted timestamp, kept verbatim.
	TriggeredAt string

	// TriggerType is "scheduled", "api" or another service-defined value.
	TriggerType string

	// TriggerID is the identifier of the trigger itself, if reported.
	TriggerID string

	// TriggerCount is how many times the trigger had fired, if reported,
	// in its original JSON form.
	TriggerCount string
}

// Field returns the display text for a record key such as "trigger_name".
// Unknown keys return "".
func (e TriggeredEvent) Field(name string) string {
	switch name {
	case grid.FieldID:
		return e.ID
	case grid.FieldTriggerName:
		return e.TriggerName
	case grid.FieldStatus:
		return e.Status
	case grid.FieldTriggeredAt:
		return e.TriggeredAt
	case grid.FieldTriggerType:
		return e.TriggerType
	case grid.FieldTriggerID:
		return e.TriggerID
	case grid.FieldTriggerCount:
		return e.TriggerCount
	}
	return ""
}

// recordsToRows converts decoded records to grid rows.
func recordsToRows(records []poller.Record) []grid.Row {
	rows := make([]grid.Row, len(records))
	for i, r := range records {
		rows[i] = grid.Row{
			ID:           r.ID,
			TriggerName:  string(r.TriggerName),
			Status:       string(r.Status),
			TriggeredAt:  string(r.TriggeredAt),
			TriggerType:  string(r.TriggerType),
			TriggerID:    r.TriggerID,
			TriggerCount: r.TriggerCount,
		}
	}
	return rows
}

// rowToEvent converts a grid row to the public event type. Identifiers and
// counts are rendered as text: strings unquoted, other values verbatim.
func rowToEvent(r grid.Row) TriggeredEvent {
	return TriggeredEvent{
		ID:           poller.RawText(r.ID),
		TriggerName:  r.TriggerName,
		Status:       r.Status,
		TriggeredAt:  r.TriggeredAt,
		TriggerType:  r.TriggerType,
		TriggerID:    poller.RawText(r.TriggerID),
		TriggerCount: poller.RawText(r.TriggerCount),
	}
}

func rowsToEvents(rows []grid.Row) []TriggeredEvent {
	events := make([]TriggeredEvent, len(rows))
	for i, r := range rows {
		events[i] = rowToEvent(r)
	}
	return events
}
