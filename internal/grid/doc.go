// Package grid holds the rows displayed by the TriggerBoard dashboards.
//
// The grid is a passive rendering surface: it is created with column
// definitions and its row data is replaced wholesale on every successful
// poll. There is no merging, diffing or per-row identity.
//
// The main components are:
//
//   - [Grid]: Interface defining the column, row and subscription operations
//   - [MemoryGrid]: In-memory implementation of Grid with pub/sub
//   - [Row]: Storage representation of one triggered event
//   - [Snapshot]: Columns plus rows at a given version
//
// Subscribers receive snapshots via channels with non-blocking sends (slow
// subscribers miss intermediate snapshots rather than block the poller).
package grid
