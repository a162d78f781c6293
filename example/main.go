package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/triggerboard"
)

func main() {
	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start mock trigger service (see mock_server.go)
	go StartMockTriggerService(ctx, ":8989")
	time.Sleep(100 * time.Millisecond)

	// only the 50 newest active events
	source, err := triggerboard.NewSource(triggerboard.DefaultSourceURL,
		triggerboard.WithTimeout(3*time.Second),
		triggerboard.WithFilter(triggerboard.FilterStatus, "active"),
		triggerboard.WithFilter(triggerboard.FilterNumRecords, "50"),
	)
	if err != nil {
		slog.Error("failed to create source", "error", err)
		os.Exit(1)
	}

	tb, err := triggerboard.New(
		triggerboard.WithSource(source),
		triggerboard.WithPollingInterval(5*time.Second),
		triggerboard.WithPort(8080),
		triggerboard.WithTitle("TriggerBoard Demo"),
		triggerboard.WithColumns(append(triggerboard.DefaultColumns(),
			triggerboard.Column{HeaderName: "Count", Field: triggerboard.FieldTriggerCount},
		)...),
		triggerboard.WithErrorCallback(func(err error) {
			slog.Warn("poll failed", "error", err)
		}),
	)
	if err != nil {
		slog.Error("failed to create triggerboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   TriggerBoard Demo                                   ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Mock trigger service on :8989                       ║")
	fmt.Println("  ║   • 4 triggers, 3 firing on their own                 ║")
	fmt.Println("  ║   • events archived after 60s, deleted after 120s     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	if err := tb.Start(ctx); err != nil {
		slog.Error("triggerboard error", "error", err)
		os.Exit(1)
	}
}
