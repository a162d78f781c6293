// Package triggerboard provides an embeddable live view of a trigger
// service's triggered events.
//
// A [Board] polls the service's events endpoint on a fixed period, replaces
// its grid with the "records" of every successful response and serves the
// grid as a web dashboard. The dashboard also hosts the trigger-configuration
// popup, whose visibility rules run server-side.
//
// # Quick Start
//
// Poll the default endpoint and serve the dashboard with graceful shutdown:
//
//	board, _ := triggerboard.New()
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Board uses the functional options pattern for configuration:
//
//	src, err := triggerboard.NewSource("http://triggers.internal/triggered_events/fetch_events",
//	    triggerboard.WithHeaders("X-Team", "scheduling"),
//	    triggerboard.WithTimeout(3 * time.Second),
//	    triggerboard.WithFilter(triggerboard.FilterStatus, "active"),
//	)
//
//	board, err := triggerboard.New(
//	    triggerboard.WithSource(src),
//	    triggerboard.WithPollingInterval(10 * time.Second),
//	    triggerboard.WithPort(9090),
//	)
//
// # Polling
//
// The first fetch happens at start (or at the time given by [WithStartAt]),
// then every polling interval. At most one fetch is in flight; a tick that
// arrives while one is outstanding is skipped. A failed fetch is logged,
// reported to [WithErrorCallback] callbacks and otherwise ignored: the grid
// keeps its previous rows until the next successful poll. There is no retry
// beyond the next tick.
//
// # Architecture
//
// Board consists of several internal packages (under internal/):
//
//   - internal/poller: The polling task and the response decoder
//   - internal/grid: In-memory grid with pub/sub for real-time updates
//   - internal/popup: Popup visibility logic over injected element handles
//   - internal/server: HTTP server with REST API, Server-Sent Events and WebSocket
//   - internal/metrics: Prometheus poll metrics
//   - internal/tui: Terminal front-end used by the watch command
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package triggerboard
