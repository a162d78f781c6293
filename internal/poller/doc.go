// Package poller fetches triggered events from the trigger service on a
// fixed period.
//
// This package is internal to TriggerBoard. It owns the HTTP client, the
// decoding of the events payload and the periodic [Task] that drives both.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Task]: Cancellable scheduled task with an explicit start time, period
//     and stop handle; at most one fetch is in flight at any time
//   - [Record]: Wire representation of one triggered event
//   - [Result]: Outcome of a single fetch
//
// Users of the triggerboard library should not need to interact with this
// package directly. Configuration is done through the main triggerboard package.
package poller
