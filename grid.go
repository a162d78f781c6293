package triggerboard

import (
	"errors"
	"fmt"

	"github.com/jpalmerr/triggerboard/internal/grid"
)

// Record keys a [Column] may render.
const (
	FieldID           = grid.FieldID
	FieldTriggerName  = grid.FieldTriggerName
	FieldStatus       = grid.FieldStatus
	FieldTriggeredAt  = grid.FieldTriggeredAt
	FieldTriggerType  = grid.FieldTriggerType
	FieldTriggerID    = grid.FieldTriggerID
	FieldTriggerCount = grid.FieldTriggerCount
)

// KnownField reports whether name is a record key a [Column] may render.
func KnownField(name string) bool {
	return grid.KnownField(name)
}

// Column describes one grid column: the header text and the record key
// whose value it shows.
type Column struct {
	HeaderName string
	Field      string
}

// DefaultColumns returns the standard column set: ID, Trigger Name, Status,
// Triggered At and Trigger Type, in that order.
func DefaultColumns() []Column {
	return fromGridColumns(grid.DefaultColumns())
}

// validateColumns checks a column set for emptiness, unknown fields and
// duplicate fields. An empty header falls back to the field name.
func validateColumns(cols []Column) ([]Column, error) {
	if len(cols) == 0 {
		return nil, errors.New("at least one column is required")
	}

	out := make([]Column, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if !grid.KnownField(c.Field) {
			return nil, fmt.Errorf("column %d: unknown field %q", i, c.Field)
		}
		if seen[c.Field] {
			return nil, fmt.Errorf("column %d: duplicate field %q", i, c.Field)
		}
		seen[c.Field] = true

		if c.HeaderName == "" {
			c.HeaderName = c.Field
		}
		out[i] = c
	}
	return out, nil
}

func toGridColumns(cols []Column) []grid.Column {
	out := make([]grid.Column, len(cols))
	for i, c := range cols {
		out[i] = grid.Column{HeaderName: c.HeaderName, Field: c.Field}
	}
	return out
}

func fromGridColumns(cols []grid.Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{HeaderName: c.HeaderName, Field: c.Field}
	}
	return out
}
