package tui

import (
	"time"

	"github.com/jpalmerr/triggerboard"
)

// RowsMsg carries the rows of a successful poll. They replace the table
// contents wholesale.
type RowsMsg struct {
	Events []triggerboard.TriggeredEvent
	At     time.Time
}

// ErrorMsg reports a failed poll. The table keeps its rows.
type ErrorMsg struct {
	Err error
	At  time.Time
}
