package triggerboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/triggerboard/dashboard"
	"github.com/jpalmerr/triggerboard/internal/grid"
	"github.com/jpalmerr/triggerboard/internal/metrics"
	"github.com/jpalmerr/triggerboard/internal/poller"
	"github.com/jpalmerr/triggerboard/internal/popup"
	"github.com/jpalmerr/triggerboard/internal/server"
)

const (
	defaultPollingInterval = poller.DefaultPeriod
	defaultPort            = 8080
)

// Board is the main orchestrator for event polling and dashboard serving.
//
// Board polls the trigger service's events endpoint, replaces its grid with
// every successful response and serves a real-time dashboard via HTTP. It is
// created using [New] with functional options and started with [Board.Start].
//
// The typical lifecycle is:
//
//	board, err := triggerboard.New(triggerboard.WithPort(9090))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Board struct {
	title           string
	source          Source
	columns         []Column
	pollingInterval time.Duration
	startAt         time.Time
	port            int
	headless        bool
	logger          *slog.Logger
	registry        *prometheus.Registry
	rowsCallbacks   []func([]TriggeredEvent)
	errorCallbacks  []func(error)

	grid *grid.MemoryGrid
	sink *metrics.PrometheusSink

	mu   sync.Mutex
	task *poller.Task
}

// New creates a new [Board] instance with the given options.
//
// Every option has a default:
//   - Source: [DefaultSourceURL] with a 10 second timeout
//   - Polling interval: 5 seconds
//   - Port: 8080
//   - Columns: [DefaultColumns]
//
// Returns an error if any option is invalid.
//
// Example:
//
//	board, err := triggerboard.New(
//	    triggerboard.WithSourceURL("http://triggers.internal/triggered_events/fetch_events"),
//	    triggerboard.WithPollingInterval(10 * time.Second),
//	    triggerboard.WithPort(9090),
//	)
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		pollingInterval: defaultPollingInterval,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	var source Source
	if cfg.source != nil {
		source = *cfg.source
	} else {
		s, err := NewSource(cfg.sourceURL)
		if err != nil {
			return nil, fmt.Errorf("invalid source: %w", err)
		}
		source = s
	}

	columns := cfg.columns
	if len(columns) == 0 {
		columns = DefaultColumns()
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Board{
		title:           cfg.title,
		source:          source,
		columns:         columns,
		pollingInterval: cfg.pollingInterval,
		startAt:         cfg.startAt,
		port:            cfg.port,
		headless:        cfg.headless,
		logger:          logger,
		registry:        registry,
		rowsCallbacks:   cfg.rowsCallbacks,
		errorCallbacks:  cfg.errorCallbacks,

		grid: grid.NewMemoryGrid(toGridColumns(columns)),
		sink: metrics.NewPrometheusSink(registry, logger),
	}, nil
}

// Start begins polling the source and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The source is polled at the configured start time, then at the configured interval
//   - Each successful poll replaces the grid rows; a failed poll leaves them alone
//   - The HTTP server starts on the configured port unless the board is headless
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("triggerboard starting", "source", b.source.RequestURL())
	b.logger.Info("polling configured", "interval", b.pollingInterval.String())
	if !b.headless {
		b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))
	}

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	task := poller.NewTask(b.source.taskConfig(b.pollingInterval, b.startAt), b.sink, b.logger)
	b.mu.Lock()
	b.task = task
	b.mu.Unlock()
	task.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range task.Results() {
			b.handleResult(result)
		}
	}()

	// cleanup function ensures the task is stopped and all results are processed
	cleanup := func() {
		task.Stop() // closes results channel
		wg.Wait()
		b.mu.Lock()
		b.task = nil
		b.mu.Unlock()
	}

	if !b.headless {
		createTrigger, err := newCreateTriggerProxy(b.source, b.logger)
		if err != nil {
			cleanup()
			return err
		}

		httpServer := server.NewServer(server.Config{
			Grid:          b.grid,
			NewForm:       popup.NewForm,
			Refresh:       b.Refresh,
			CreateTrigger: createTrigger,
			Metrics:       promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}),
			Port:          b.port,
			Assets:        dashboard.Assets,
			Title:         b.title,
		}, b.logger)
		if err := httpServer.Start(ctx); err != nil {
			cleanup()
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("triggerboard stopped")
	return nil
}

// handleResult applies one poll outcome: replace the rows on success, keep
// them on failure.
func (b *Board) handleResult(result poller.Result) {
	logAttrs := []any{
		"url", result.URL,
		"poll_id", result.PollID,
		"status_code", result.StatusCode,
		"latency_ms", result.Latency.Milliseconds(),
	}

	if result.Err != nil {
		b.logger.Warn("fetch failed, grid unchanged", append(logAttrs, "error", result.Err.Error())...)
		for _, cb := range b.errorCallbacks {
			invokeCallbackSafe("error", func() { cb(result.Err) }, result.PollID, b.logger)
		}
		return
	}

	// grid update first (callbacks fire after data is replaced)
	rows := recordsToRows(result.Records)
	b.grid.SetRows(rows)
	b.sink.RowsUpdate(len(rows))
	b.logger.Debug("grid refreshed", append(logAttrs, "rows", len(rows))...)

	for _, cb := range b.rowsCallbacks {
		events := rowsToEvents(rows)
		invokeCallbackSafe("rows", func() { cb(events) }, result.PollID, b.logger)
	}
}

// Refresh requests an immediate poll outside the regular schedule.
//
// It returns true only once the fetch has actually started. Before the first
// scheduled poll, and while a fetch is in flight, it returns false.
func (b *Board) Refresh() bool {
	b.mu.Lock()
	task := b.task
	b.mu.Unlock()
	if task == nil {
		return false
	}
	return task.Refresh()
}

// Rows returns the events currently shown in the grid, in service order.
func (b *Board) Rows() []TriggeredEvent {
	return rowsToEvents(b.grid.Snapshot().Records)
}

// LastUpdated returns the time of the last successful poll, or the zero time
// if none has succeeded yet.
func (b *Board) LastUpdated() time.Time {
	return b.grid.Snapshot().UpdatedAt
}

// Columns returns a copy of the configured grid columns.
func (b *Board) Columns() []Column {
	cp := make([]Column, len(b.columns))
	copy(cp, b.columns)
	return cp
}

// Source returns the polled endpoint.
func (b *Board) Source() Source {
	return b.source
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// PollingInterval returns the configured interval between fetches.
func (b *Board) PollingInterval() time.Duration {
	return b.pollingInterval
}

// Headless reports whether the HTTP server is disabled.
func (b *Board) Headless() bool {
	return b.headless
}

// invokeCallbackSafe calls a user callback with panic recovery.
// Panics are logged with a correlation id but do not propagate.
func invokeCallbackSafe(kind string, fn func(), pollID string, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked",
				"panic", r,
				"callback", kind,
				"poll_id", pollID,
				"correlation_id", uuid.NewString(),
			)
		}
	}()
	fn()
}
