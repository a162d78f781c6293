package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/triggerboard"
	"github.com/jpalmerr/triggerboard/config"
	"github.com/jpalmerr/triggerboard/internal/tui"
)

// watchCmd shows the events in the terminal instead of a browser.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the events in the terminal",
	Long: `Poll the trigger service and show the events as a table in the terminal.

No HTTP server is started. Keys:
  r      refresh now
  n      open the new-trigger popup
  t / s  switch trigger type / schedule type while the popup is open
  esc    close the popup
  q      quit

Example:
  triggerboard watch
  triggerboard watch -c config.yaml --log-file triggerboard.log`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (defaults apply when omitted)")
	watchCmd.Flags().String("log-file", "", "write JSON logs to this file instead of discarding them")
}

// watchLogger returns a logger that stays off the terminal the UI draws on.
func watchLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logPath, _ := cmd.Flags().GetString("log-file")
	logger, closeLog, err := watchLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}

	// the program is created before the board starts, so callbacks never
	// see a nil program
	var p *tea.Program
	opts = append(opts,
		triggerboard.WithLogger(logger),
		triggerboard.WithHeadless(),
		triggerboard.WithRowsCallback(func(events []triggerboard.TriggeredEvent) {
			p.Send(tui.RowsMsg{Events: events, At: time.Now()})
		}),
		triggerboard.WithErrorCallback(func(err error) {
			p.Send(tui.ErrorMsg{Err: err, At: time.Now()})
		}),
	)

	tb, err := triggerboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create TriggerBoard: %w", err)
	}

	model := tui.New(tui.Config{
		Title:   cfg.Title,
		Source:  tb.Source().RequestURL(),
		Columns: tb.Columns(),
		Refresh: tb.Refresh,
	})
	p = tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- tb.Start(ctx)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errChan
		return fmt.Errorf("terminal UI error: %w", err)
	}

	cancel()
	return awaitShutdown(ctx, errChan, logger)
}
