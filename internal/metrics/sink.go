// Package metrics records poller activity for the TriggerBoard dashboard.
//
// The [Sink] interface is fire-and-forget: implementations must not block or
// return errors. [PrometheusSink] exports counters and histograms through a
// caller-supplied registry, and [NoopSink] discards everything.
package metrics

import "time"

// Sink defines the interface for recording poller metrics.
type Sink interface {
	// PollStarted is called when a fetch begins.
	PollStarted()

	// PollCompleted is called when a fetch finishes. rows is the number of
	// records delivered to the grid (zero on error).
	PollCompleted(duration time.Duration, rows int, err error)

	// PollSkipped is called when a tick or refresh is dropped because a
	// fetch is already in flight.
	PollSkipped()

	// RowsUpdate reports the current number of rows shown by the grid.
	RowsUpdate(n int)
}
