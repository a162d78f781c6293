package metrics

import "time"

// NoopSink discards all metrics.
type NoopSink struct{}

var _ Sink = NoopSink{}

func (NoopSink) PollStarted() {}

func (NoopSink) PollCompleted(_ time.Duration, _ int, _ error) {}

func (NoopSink) PollSkipped() {}

func (NoopSink) RowsUpdate(_ int) {}
