// Standalone mock trigger service for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/triggerboard serve -c example/config.yaml
//	go run ./cmd/triggerboard watch -c example/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/triggerboard/example/mockservice"
)

func main() {
	addr := flag.String("addr", ":8989", "listen address")
	token := flag.String("token", "", "require this bearer token")
	flag.Parse()

	fmt.Printf("Mock trigger service starting on %s\n", *addr)
	fmt.Println("Events: active -> archived after 60s -> deleted after 120s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	opts := []mockservice.Option{mockservice.WithLogger(logger)}
	if *token != "" {
		opts = append(opts, mockservice.WithToken(*token))
	}
	svc := mockservice.New(mockservice.DefaultTriggers(), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc.Run(ctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
