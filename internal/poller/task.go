package poller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/triggerboard/internal/metrics"
)

// DefaultPeriod is the time between fetches when none is configured.
const DefaultPeriod = 5 * time.Second

// Result holds the outcome of a single fetch of the events endpoint.
type Result struct {
	// PollID correlates log lines for one fetch.
	PollID string

	// URL is the target URL that was fetched.
	URL string

	// Records is the full row-set on success; nil when Err is set.
	Records []Record

	// Err is the transport, status or decoding error, if any.
	Err error

	// StatusCode is the HTTP status code. Zero if no response was received.
	StatusCode int

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// CheckedAt is the time the fetch completed.
	CheckedAt time.Time
}

// TaskConfig describes what a [Task] fetches and when.
type TaskConfig struct {
	// URL is the fully built request URL, query string included.
	URL string

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds each request. Zero means no per-request timeout.
	Timeout time.Duration

	// RecordsPath locates the events array in the response body.
	RecordsPath []string

	// Period is the time between scheduled fetches.
	Period time.Duration

	// StartAt delays the first fetch. The zero value starts immediately.
	StartAt time.Time
}

// Task periodically fetches the events endpoint and emits each [Result].
//
// A Task is the explicit poller context: it owns its HTTP client, timer and
// cancellation. It fetches once at StartAt (or immediately), then every
// Period until [Task.Stop] is called or the parent context is cancelled.
//
// At most one fetch is in flight. A tick or [Task.Refresh] that arrives while
// a fetch is outstanding is dropped and counted as skipped, so results are
// always emitted in the order their fetches started. Refresh requests are
// answered by the polling loop itself, so a true return always means a fetch
// was started.
//
// All lifecycle methods (Start, Stop, Refresh) are safe for concurrent use.
type Task struct {
	cfg     TaskConfig
	client  *Client
	metrics metrics.Sink
	logger  *slog.Logger
	results chan Result
	refresh chan chan bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	inFlight atomic.Bool
}

// NewTask creates a new polling [Task].
//
// A nil sink disables metrics; a nil logger uses slog.Default(). The task
// must be started with [Task.Start] and stopped with [Task.Stop].
func NewTask(cfg TaskConfig, sink metrics.Sink, logger *slog.Logger) *Task {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.RecordsPath) == 0 {
		cfg.RecordsPath = []string{DefaultRecordsPath}
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}

	return &Task{
		cfg:     cfg,
		client:  NewClient(),
		metrics: sink,
		logger:  logger,
		results: make(chan Result, 1),
		refresh: make(chan chan bool),
	}
}

// Results returns a receive-only channel that emits one [Result] per fetch.
//
// The channel is closed once the task has stopped and every in-flight fetch
// has finished. Consumers should read until it is closed.
func (t *Task) Results() <-chan Result {
	return t.results
}

// InFlight reports whether a fetch is currently outstanding.
func (t *Task) InFlight() bool {
	return t.inFlight.Load()
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking. If ctx is nil, context.Background() is used.
// Start is idempotent; calls after the first, or after Stop, are no-ops.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started || t.stopped {
		t.mu.Unlock()
		return
	}
	t.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	loopCtx := t.ctx // capture under lock to avoid race
	t.wg.Add(1)
	t.mu.Unlock()

	go t.run(loopCtx)
}

// Stop cancels the loop and any in-flight fetch, then waits for them.
//
// Stop is idempotent and safe to call before Start. After Stop returns the
// results channel is closed and no further results are emitted.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.stopped {
		t.stopped = true
		if t.cancel != nil {
			t.cancel()
		}
	}
	t.mu.Unlock()

	t.wg.Wait()

	if t.client != nil {
		t.client.Close()
	}

	// ensure channel is closed even if Start() was never called
	t.closeOnce.Do(func() { close(t.results) })
}

// Refresh asks the running task for an immediate out-of-band fetch.
//
// Refresh blocks until the loop has handled the request. It returns true only
// if a fetch was started. Before StartAt, and while a fetch is in flight, the
// request is refused.
func (t *Task) Refresh() bool {
	t.mu.Lock()
	running := t.started && !t.stopped
	ctx := t.ctx
	t.mu.Unlock()
	if !running {
		return false
	}

	reply := make(chan bool, 1)
	select {
	case t.refresh <- reply:
	case <-ctx.Done():
		return false
	}

	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (t *Task) run(ctx context.Context) {
	defer t.wg.Done()

	var fetches sync.WaitGroup
	defer func() {
		// no fetch goroutine may send after the channel is closed
		fetches.Wait()
		t.closeOnce.Do(func() { close(t.results) })
	}()

	if delay := time.Until(t.cfg.StartAt); delay > 0 {
		t.logger.Debug("poller waiting for start time", "start_at", t.cfg.StartAt)
		timer := time.NewTimer(delay)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case reply := <-t.refresh:
				// the first fetch belongs to StartAt
				reply <- false
			case <-timer.C:
				break wait
			}
		}
	}

	t.tryPoll(ctx, &fetches)

	ticker := time.NewTicker(t.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tryPoll(ctx, &fetches)
		case reply := <-t.refresh:
			reply <- t.tryPoll(ctx, &fetches)
		}
	}
}

// tryPoll starts a fetch unless one is already in flight.
func (t *Task) tryPoll(ctx context.Context, fetches *sync.WaitGroup) bool {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.metrics.PollSkipped()
		t.logger.Debug("poll skipped, fetch already in flight", "url", t.cfg.URL)
		return false
	}

	fetches.Add(1)
	go func() {
		defer fetches.Done()
		defer t.inFlight.Store(false)

		result := t.Poll(ctx)

		// a response that lands after Stop is discarded
		if ctx.Err() != nil {
			return
		}
		select {
		case t.results <- result:
		case <-ctx.Done():
		}
	}()
	return true
}

// Poll performs one fetch and decode of the events endpoint.
//
// Poll does not consult the in-flight guard; the periodic loop and
// [Task.Refresh] go through it, direct callers do not.
func (t *Task) Poll(ctx context.Context) Result {
	pollID := uuid.NewString()
	t.metrics.PollStarted()

	resp := t.client.Get(ctx, Request{URL: t.cfg.URL, Headers: t.cfg.Headers, Timeout: t.cfg.Timeout})

	result := Result{
		PollID:     pollID,
		URL:        t.cfg.URL,
		StatusCode: resp.StatusCode,
		Latency:    resp.Latency,
		CheckedAt:  time.Now(),
	}

	switch {
	case resp.Error != nil:
		result.Err = resp.Error
	case resp.StatusCode == http.StatusNotFound:
		// the trigger service reports an empty selection as 404 with an
		// empty records array; anything else under 404 is a failure
		records, err := DecodeRecords(resp.Body, t.cfg.RecordsPath)
		if err != nil {
			result.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		} else {
			result.Records = records
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		result.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		records, err := DecodeRecords(resp.Body, t.cfg.RecordsPath)
		if err != nil {
			result.Err = err
		} else {
			result.Records = records
		}
	}

	t.metrics.PollCompleted(result.Latency, len(result.Records), result.Err)
	return result
}
