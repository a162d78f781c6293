package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jpalmerr/triggerboard/example/mockservice"
)

// StartMockTriggerService runs the in-memory trigger service on addr until
// ctx is cancelled. Triggers fire every 15-40 seconds and their events are
// archived after a minute, so the dashboard keeps changing.
func StartMockTriggerService(ctx context.Context, addr string) {
	svc := mockservice.New(mockservice.DefaultTriggers())

	// seed a few events so the first poll has rows
	for _, id := range []int64{1, 2, 3} {
		_, _ = svc.Fire(id)
	}
	go svc.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("mock server error", "error", err)
	}
}
