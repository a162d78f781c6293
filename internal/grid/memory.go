package grid

import (
	"sync"
	"time"
)

const subscriberBuffer = 16

// MemoryGrid is an in-memory implementation of [Grid].
//
// Rows are replaced wholesale by SetRows; readers always get copies. Each
// subscriber has a buffered channel; when it is full the snapshot is dropped
// for that subscriber so that SetRows never blocks.
type MemoryGrid struct {
	columns []Column

	mu        sync.RWMutex
	rows      []Row
	version   uint64
	updatedAt time.Time

	subMu       sync.RWMutex
	subscribers map[chan Snapshot]struct{}

	now func() time.Time
}

var _ Grid = (*MemoryGrid)(nil)

// NewMemoryGrid creates an empty grid with the given columns. A nil or empty
// column set falls back to [DefaultColumns].
func NewMemoryGrid(columns []Column) *MemoryGrid {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	return &MemoryGrid{
		columns:     copyColumns(columns),
		rows:        []Row{},
		subscribers: make(map[chan Snapshot]struct{}),
		now:         time.Now,
	}
}

// Columns returns a copy of the grid's column definitions.
func (g *MemoryGrid) Columns() []Column {
	return copyColumns(g.columns)
}

// SetRows replaces every row with rows and notifies subscribers.
// A nil slice clears the grid.
func (g *MemoryGrid) SetRows(rows []Row) {
	g.mu.Lock()
	g.rows = copyRows(rows)
	g.version++
	g.updatedAt = g.now()
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notifySubscribers(snap)
}

// Snapshot returns a copy of the current columns and rows.
func (g *MemoryGrid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// Len returns the current number of rows.
func (g *MemoryGrid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows)
}

func (g *MemoryGrid) snapshotLocked() Snapshot {
	return Snapshot{
		Columns:   copyColumns(g.columns),
		Records:   copyRows(g.rows),
		Version:   g.version,
		UpdatedAt: g.updatedAt,
	}
}

// Subscribe creates a new subscription and returns a channel for snapshots.
func (g *MemoryGrid) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	g.subMu.Lock()
	g.subscribers[ch] = struct{}{}
	g.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (g *MemoryGrid) Unsubscribe(ch <-chan Snapshot) {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	for subCh := range g.subscribers {
		if subCh == ch {
			delete(g.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (g *MemoryGrid) SubscriberCount() int {
	g.subMu.RLock()
	defer g.subMu.RUnlock()
	return len(g.subscribers)
}

func (g *MemoryGrid) notifySubscribers(snap Snapshot) {
	g.subMu.RLock()
	defer g.subMu.RUnlock()

	for ch := range g.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}

func copyColumns(cols []Column) []Column {
	cp := make([]Column, len(cols))
	copy(cp, cols)
	return cp
}

// copyRows returns a non-nil copy; raw identifiers are shared since rows are
// never mutated in place.
func copyRows(rows []Row) []Row {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return cp
}
